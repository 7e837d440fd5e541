package entity

const (
	SettingsOptionKey      = "eom_order_management_settings"
	DefaultOrdersPerPage   = 20
	ActionUpdateStatus     = "eom_update_status"
	ActionSaveSettings     = "eom_save_settings"
	RateLimitActionStatus  = "update_status"
	DefaultRateLimit       = 10
	DefaultRateLimitWindow = 60
)

// Settings is the persisted panel configuration. A nil section means the
// section was not supplied and the default applies.
type Settings struct {
	OrderColumns  Columns           `json:"order_columns,omitempty"`
	OrdersPerPage int               `json:"orders_per_page"`
	StatusLabels  map[string]string `json:"status_labels,omitempty"`
	RoleAccess    RoleAccess        `json:"role_access,omitempty"`
}

func DefaultStatusLabels() map[string]string {
	return map[string]string{
		StatusOnHold:     "On Hold",
		StatusProcessing: "Processing",
		StatusCompleted:  "Completed",
	}
}

func DefaultSettings() *Settings {
	return &Settings{
		OrderColumns:  DefaultColumns(),
		OrdersPerPage: DefaultOrdersPerPage,
		StatusLabels:  DefaultStatusLabels(),
		RoleAccess:    DefaultRoleAccess(),
	}
}

// WithDefaults fills every missing section from DefaultSettings.
func (s *Settings) WithDefaults() *Settings {
	def := DefaultSettings()
	if s == nil {
		return def
	}
	out := *s
	if out.OrderColumns == nil {
		out.OrderColumns = def.OrderColumns
	}
	if out.OrdersPerPage <= 0 {
		out.OrdersPerPage = def.OrdersPerPage
	}
	if out.StatusLabels == nil {
		out.StatusLabels = def.StatusLabels
	}
	if out.RoleAccess == nil {
		out.RoleAccess = def.RoleAccess
	}
	return &out
}

// StatusLabel returns the configured label, or the host name of the status.
func (s *Settings) StatusLabel(status string) string {
	if label, ok := s.StatusLabels[status]; ok && label != "" {
		return label
	}
	return StatusName(status)
}

// SettingsForm is the raw settings submission before sanitizing.
type SettingsForm struct {
	OrderColumns  FormValues  `json:"order_columns"`
	OrdersPerPage interface{} `json:"orders_per_page"`
	StatusLabels  FormValues  `json:"status_labels"`
	RoleAccess    FormValues  `json:"role_access"`
}

// SettingsView is what the settings page renders.
type SettingsView struct {
	Settings  *Settings   `json:"settings"`
	Available []ColumnDef `json:"available_columns"`
	Statuses  []string    `json:"statuses"`
	Roles     []Role      `json:"roles"`
	Nonce     string      `json:"nonce"`
}
