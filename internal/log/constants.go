package log

const (
	KeyAppName          = "app"
	KeyRequestID        = "requestId"
	KeyTraceID          = "traceId"
	KeySpanID           = "spanId"
	KeyProcess          = "process"
	KeyTag              = "tag"
	KeyConfig           = "config"
	KeyRequest          = "request"
	KeyRequestBody      = "requestBody"
	KeyRequestHeader    = "requestHeader"
	KeyRequestHost      = "host"
	KeyRequestIp        = "requesterIP"
	KeyRequestMethod    = "requestMethod"
	KeyRequestURI       = "requestURI"
	KeyRequestURL       = "requestURL"
	KeyPathValues       = "pathValues"
	KeyStatusCode       = "statusCode"
	KeySessionID        = "sessionId"
	KeySessionPhase     = "sessionPhase"
	KeyProductID        = "productId"
	KeyProductQuantity  = "productQuantity"
	KeyCouponCode       = "couponCode"
	KeyShippingMethodID = "shippingMethodId"
	KeyLineItems        = "lineItems"
	KeyTotal            = "total"
	KeyTransactionID    = "transactionId"
	KeyPaymentErrors    = "paymentErrors"
	KeyPaymentApproved  = "paymentApproved"
	KeyReceipt          = "receipt"
	KeyReceiptChannel   = "receiptChannel"
	KeyCacheAddr        = "cacheAddr"
	KeyAuthToken        = "authToken"
	KeyCanMakePayments  = "canMakePayments"
	KeyTokenExpiresAt   = "tokenExpiresAt"
)
