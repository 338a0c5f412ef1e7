package validation

import (
	"testing"

	"github.com/jogardn/sweetshop/pkg/models"
)

func floatPtr(f float64) *float64 { return &f }

func validOrder() models.Order {
	return models.Order{
		Items: []models.CartItem{
			{ProductID: "65f1c0ffee0ddba11ad0beef", Title: "Dark Truffle", Price: floatPtr(4.5), Quantity: 2},
		},
		Subtotal: floatPtr(9),
		Tax:      floatPtr(0.9),
		Total:    floatPtr(9.9),
		Customer: models.Customer{Name: "Ada", Email: "ada@example.com"},
	}
}

func TestProductValid(t *testing.T) {
	v := New()

	cases := []struct {
		name    string
		product models.Product
	}{
		{"all fields", models.Product{Title: "Dark Truffle", Price: floatPtr(4.5), Category: "chocolate", InStock: true}},
		{"zero price", models.Product{Title: "Sample", Price: floatPtr(0), Category: "praline"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := v.Struct(tc.product); err != nil {
				t.Errorf("expected valid, got %v", err)
			}
		})
	}
}

func TestProductInvalid(t *testing.T) {
	v := New()

	cases := []struct {
		name    string
		product models.Product
		field   string
	}{
		{"missing title", models.Product{Price: floatPtr(1), Category: "brittle"}, "title"},
		{"missing price", models.Product{Title: "Fudge", Category: "chocolate"}, "price"},
		{"negative price", models.Product{Title: "Fudge", Price: floatPtr(-1), Category: "chocolate"}, "price"},
		{"missing category", models.Product{Title: "Fudge", Price: floatPtr(1)}, "category"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.product)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			verr, ok := err.(*Error)
			if !ok {
				t.Fatalf("expected *Error, got %T", err)
			}
			if !hasField(verr, tc.field) {
				t.Errorf("expected violation on %q, got %v", tc.field, verr.Fields)
			}
		})
	}
}

func TestOrderInvalidEmail(t *testing.T) {
	v := New()

	order := validOrder()
	order.Customer.Email = "not-an-email"

	err := v.Struct(order)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !hasField(err.(*Error), "customer.email") {
		t.Errorf("expected violation on customer.email, got %v", err)
	}
}

func TestOrderItemQuantityFloor(t *testing.T) {
	v := New()

	order := validOrder()
	order.Items[0].Quantity = 0

	err := v.Struct(order)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !hasField(err.(*Error), "items[0].quantity") {
		t.Errorf("expected violation on items[0].quantity, got %v", err)
	}
}

func TestOrderEmptyItemsAllowed(t *testing.T) {
	v := New()

	order := validOrder()
	order.Items = nil

	if err := v.Struct(order); err != nil {
		t.Errorf("empty item list should validate, got %v", err)
	}
}

func TestOrderNegativeMonetaryField(t *testing.T) {
	v := New()

	order := validOrder()
	order.Tax = floatPtr(-0.5)

	err := v.Struct(order)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !hasField(err.(*Error), "tax") {
		t.Errorf("expected violation on tax, got %v", err)
	}
}

func TestErrorReportsEveryViolation(t *testing.T) {
	v := New()

	err := v.Struct(models.Product{Price: floatPtr(-2)})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	verr := err.(*Error)
	for _, field := range []string{"title", "price", "category"} {
		if !hasField(verr, field) {
			t.Errorf("expected violation on %q, got %v", field, verr.Fields)
		}
	}
}

func hasField(err *Error, field string) bool {
	for _, f := range err.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}
