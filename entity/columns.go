package entity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"easyorders/internal/lib/sanitize"
)

const (
	ColumnOrderNumber     = "order_number"
	ColumnOrderDate       = "order_date"
	ColumnOrderStatus     = "order_status"
	ColumnCustomerName    = "customer_name"
	ColumnOrderTotal      = "order_total"
	ColumnShippingAddress = "shipping_address"
	ColumnPaymentMethod   = "payment_method"

	// CustomFieldPrefix marks columns backed by an order meta key.
	CustomFieldPrefix = "field_"
)

// ColumnDef describes a column the orders table can render.
type ColumnDef struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	MetaKey  string `json:"meta_key,omitempty"`
	Standard bool   `json:"standard"`
}

var StandardColumns = []ColumnDef{
	{Key: ColumnOrderNumber, Label: "Order Number", Standard: true},
	{Key: ColumnOrderDate, Label: "Order Date", Standard: true},
	{Key: ColumnOrderStatus, Label: "Order Status", Standard: true},
	{Key: ColumnCustomerName, Label: "Customer Name", Standard: true},
	{Key: ColumnOrderTotal, Label: "Order Total", Standard: true},
	{Key: ColumnShippingAddress, Label: "Shipping Address", Standard: true},
	{Key: ColumnPaymentMethod, Label: "Payment Method", Standard: true},
}

type Column struct {
	Key     string
	Enabled bool
}

// Columns is an ordered set of column flags. It serializes as a JSON object
// whose key order is the display order.
type Columns []Column

func DefaultColumns() Columns {
	return Columns{
		{Key: ColumnOrderNumber, Enabled: true},
		{Key: ColumnOrderDate, Enabled: true},
		{Key: ColumnOrderStatus, Enabled: true},
		{Key: ColumnCustomerName, Enabled: true},
		{Key: ColumnOrderTotal, Enabled: true},
	}
}

// Enabled returns the keys of enabled columns in display order.
func (c Columns) Enabled() []string {
	keys := make([]string, 0, len(c))
	for _, col := range c {
		if col.Enabled {
			keys = append(keys, col.Key)
		}
	}
	return keys
}

func (c Columns) Get(key string) (bool, bool) {
	for _, col := range c {
		if col.Key == key {
			return col.Enabled, true
		}
	}
	return false, false
}

func (c Columns) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if col.Enabled {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps the key order of the object. Values are coerced to
// booleans the way form input is.
func (c *Columns) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*c = nil
		return nil
	}
	pairs, err := decodeOrderedObject(data)
	if err != nil {
		return err
	}
	cols := make(Columns, 0, len(pairs))
	for _, p := range pairs {
		cols = append(cols, Column{Key: p.Key, Enabled: sanitize.Bool(p.Value)})
	}
	*c = cols
	return nil
}

// FormValue is a raw key/value pair of a submitted object, in submission order.
type FormValue struct {
	Key   string
	Value interface{}
}

// FormValues is an object decoded without losing key order or value types.
type FormValues []FormValue

func (f *FormValues) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*f = nil
		return nil
	}
	pairs, err := decodeOrderedObject(data)
	if err != nil {
		return err
	}
	*f = pairs
	return nil
}

func decodeOrderedObject(data []byte) (FormValues, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var pairs FormValues
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var value interface{}
		if err = dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}
		pairs = append(pairs, FormValue{Key: key, Value: value})
	}
	if _, err = dec.Token(); err != nil {
		return nil, err
	}
	return pairs, nil
}
