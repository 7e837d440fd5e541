package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/biter777/countries"
	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypePurchase OrderType = "shop_order"
	OrderTypeRefund   OrderType = "shop_order_refund"
)

var ErrOrderNotFound = errors.New("order not found")

type Order struct {
	ID                 int64               `json:"id"`
	Type               OrderType           `json:"type"`
	Status             string              `json:"status"`
	Created            time.Time           `json:"created"`
	BillingFirstName   string              `json:"billing_first_name"`
	BillingLastName    string              `json:"billing_last_name"`
	BillingEmail       string              `json:"billing_email"`
	BillingCompany     string              `json:"billing_company"`
	Total              decimal.Decimal     `json:"total"`
	Currency           string              `json:"currency"`
	Shipping           Address             `json:"shipping"`
	PaymentMethodTitle string              `json:"payment_method_title"`
	Meta               map[string][]string `json:"meta,omitempty"`
}

// IsPurchase reports whether the order is a genuine purchase order and not a
// refund or another derived document.
func (o *Order) IsPurchase() bool {
	return o != nil && o.Type == OrderTypePurchase
}

func (o *Order) CustomerName() string {
	return strings.TrimSpace(o.BillingFirstName + " " + o.BillingLastName)
}

// MetaValue returns all values stored under key, nil when absent.
func (o *Order) MetaValue(key string) []string {
	if o.Meta == nil {
		return nil
	}
	return o.Meta[key]
}

type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
}

// CountryName resolves the ISO code to an English country name, falling back
// to the raw value for unknown codes.
func (a *Address) CountryName() string {
	code := strings.TrimSpace(a.Country)
	if code == "" {
		return ""
	}
	country := countries.ByName(strings.ToUpper(code))
	if country == countries.Unknown || country == countries.None {
		return code
	}
	return country.String()
}

// OneLine joins the non-empty address parts with ", ".
func (a *Address) OneLine() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	parts := []string{name, a.Company, a.Address1, a.Address2, a.City, a.State, a.Postcode, a.CountryName()}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
