package constants

const (
	AppPaymentService  = "payment-service"
	AppReceiptListener = "receipt-listener"
	AppQuote           = "quote"
	AppMainCheckout    = "main checkout"
	AudienceSession    = "audience-session"
)
