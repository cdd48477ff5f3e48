package types

type Side string

const (
	SideTypeBuy  Side = "BUY"
	SideTypeSell Side = "SELL"
)

func (s Side) IsValid() bool {
	return s == SideTypeBuy || s == SideTypeSell
}
