package serialcom

type DataBits int

func (d DataBits) Int() int {
	return int(d)
}

func (d DataBits) valid() bool {
	return d >= DataBits5 && d <= DataBits8
}

const (
	DataBits5 DataBits = 5
	DataBits6 DataBits = 6
	DataBits7 DataBits = 7
	DataBits8 DataBits = 8
)
