package request

type SetQuantity struct {
	Quantity *uint `validate:"required,lte=999" json:"quantity"`
}

type ApplyCoupon struct {
	Code string `validate:"max=64" json:"code"`
}

type SelectShipping struct {
	MethodID string `validate:"required,max=64" json:"methodId"`
}
