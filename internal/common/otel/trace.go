package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/Alturino/checkout/internal/common/constants"
)

var Tracer = otel.Tracer(constants.AppMainCheckout)
