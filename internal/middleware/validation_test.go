package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type shipmentRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	Quantity    int    `json:"quantity" validate:"gte=1,lte=100"`
	ShipAddress string `json:"ship_address" validate:"required"`
}

func decodeShipment(t *testing.T, body map[string]interface{}) error {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest("POST", "/test", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	var out shipmentRequest
	return DecodeAndValidate(req, &out)
}

func TestProperty_MissingRequiredFieldsAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a request passes iff every required field is present", prop.ForAll(
		func(includeProduct, includeAddress bool) bool {
			body := map[string]interface{}{"quantity": 2}
			if includeProduct {
				body["product_id"] = "p1"
			}
			if includeAddress {
				body["ship_address"] = "12 Main St"
			}

			err := decodeShipment(t, body)
			if includeProduct && includeAddress {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_QuantityBoundsAreEnforced(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("quantity outside [1,100] is rejected", prop.ForAll(
		func(quantity int) bool {
			err := decodeShipment(t, map[string]interface{}{
				"product_id":   "p1",
				"quantity":     quantity,
				"ship_address": "12 Main St",
			})
			if quantity >= 1 && quantity <= 100 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(-50, 200),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFormatValidationErrorsNamesEveryBadField(t *testing.T) {
	err := decodeShipment(t, map[string]interface{}{"quantity": 0})
	if err == nil {
		t.Fatal("expected validation failure")
	}

	formatted := FormatValidationErrors(err)
	if len(formatted) != 3 {
		t.Fatalf("expected 3 validation errors, got %d: %v", len(formatted), formatted)
	}
	for _, ve := range formatted {
		if ve.Field == "" || ve.Message == "" {
			t.Fatalf("validation error missing field or message: %+v", ve)
		}
	}
}

func TestDecodeAndValidateRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	var out shipmentRequest
	if err := DecodeAndValidate(req, &out); err == nil {
		t.Fatal("expected decode failure")
	}
}
