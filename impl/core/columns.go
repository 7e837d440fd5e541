package core

import (
	"encoding/json"
	"strings"

	"easyorders/entity"
)

const rowDateLayout = "02.01.2006"

// ColumnCatalogue lists the standard columns followed by the configured
// custom fields.
func (c *Core) ColumnCatalogue() []entity.ColumnDef {
	defs := append([]entity.ColumnDef(nil), entity.StandardColumns...)
	for _, name := range c.customFieldKeys() {
		defs = append(defs, entity.ColumnDef{
			Key:     entity.CustomFieldPrefix + name,
			Label:   c.customFields[name],
			MetaKey: name,
		})
	}
	return defs
}

func (c *Core) knownColumn(key string) bool {
	for _, def := range entity.StandardColumns {
		if def.Key == key {
			return true
		}
	}
	if name, ok := strings.CutPrefix(key, entity.CustomFieldPrefix); ok {
		_, configured := c.customFields[name]
		return configured
	}
	return false
}

// visibleColumns resolves the enabled column keys of settings to definitions,
// in settings order. Unknown keys render with the key as label.
func (c *Core) visibleColumns(settings *entity.Settings) []entity.ColumnDef {
	catalogue := make(map[string]entity.ColumnDef)
	for _, def := range c.ColumnCatalogue() {
		catalogue[def.Key] = def
	}

	var out []entity.ColumnDef
	for _, key := range settings.OrderColumns.Enabled() {
		def, ok := catalogue[key]
		if !ok {
			def = entity.ColumnDef{Key: key, Label: key}
			if name, custom := strings.CutPrefix(key, entity.CustomFieldPrefix); custom {
				def.MetaKey = name
			}
		}
		out = append(out, def)
	}
	return out
}

func (c *Core) renderRow(order *entity.Order, columns []entity.ColumnDef, settings *entity.Settings) entity.OrderRow {
	row := entity.OrderRow{
		ID:     order.ID,
		Status: order.Status,
		Cells:  make(map[string]string, len(columns)),
	}
	for _, col := range columns {
		row.Cells[col.Key] = c.renderCell(order, col, settings)
	}
	return row
}

func (c *Core) renderCell(order *entity.Order, col entity.ColumnDef, settings *entity.Settings) string {
	switch col.Key {
	case entity.ColumnOrderNumber:
		if number := order.MetaValue("_order_number"); len(number) > 0 && number[0] != "" {
			return "#" + number[0]
		}
		return "#" + formatID(order.ID)
	case entity.ColumnOrderDate:
		if order.Created.IsZero() {
			return ""
		}
		return order.Created.In(c.loc).Format(rowDateLayout)
	case entity.ColumnOrderStatus:
		return settings.StatusLabel(order.Status)
	case entity.ColumnCustomerName:
		return order.CustomerName()
	case entity.ColumnOrderTotal:
		return strings.TrimSpace(order.Total.StringFixed(2) + " " + order.Currency)
	case entity.ColumnShippingAddress:
		return order.Shipping.OneLine()
	case entity.ColumnPaymentMethod:
		return order.PaymentMethodTitle
	}
	if col.MetaKey == "" {
		return ""
	}
	return joinMeta(order.MetaValue(col.MetaKey))
}

// joinMeta flattens meta values, expanding values stored as JSON arrays.
func joinMeta(values []string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if strings.HasPrefix(v, "[") {
			var list []interface{}
			if err := json.Unmarshal([]byte(v), &list); err == nil {
				for _, item := range list {
					if s := scalarText(item); s != "" {
						parts = append(parts, s)
					}
				}
				continue
			}
		}
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}
