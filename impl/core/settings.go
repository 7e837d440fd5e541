package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"easyorders/entity"
	apierrors "easyorders/internal/lib/errors"
	"easyorders/internal/lib/sanitize"
	"easyorders/internal/lib/sl"
	"easyorders/internal/security"
)

// LoadSettings reads the settings option and fills missing sections with
// defaults. A missing or unreadable option yields the defaults.
func (c *Core) LoadSettings(ctx context.Context) (*entity.Settings, error) {
	if c.options == nil {
		return entity.DefaultSettings(), nil
	}
	raw, found, err := c.options.GetOption(ctx, entity.SettingsOptionKey)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if !found || raw == "" {
		return entity.DefaultSettings(), nil
	}

	var stored entity.Settings
	if err = json.Unmarshal([]byte(raw), &stored); err != nil {
		c.log.With(sl.Err(err)).Warn("stored settings are malformed, using defaults")
		return entity.DefaultSettings(), nil
	}
	return stored.WithDefaults(), nil
}

// SanitizeSettings turns a raw submission into storable settings. Sections
// absent from the input stay nil so the defaults apply on load.
func (c *Core) SanitizeSettings(input *entity.SettingsForm) *entity.Settings {
	out := &entity.Settings{
		OrdersPerPage: sanitize.PositiveInt(input.OrdersPerPage, entity.DefaultOrdersPerPage),
	}

	if input.OrderColumns != nil {
		out.OrderColumns = make(entity.Columns, 0, len(input.OrderColumns))
		for _, v := range input.OrderColumns {
			key := sanitize.Key(v.Key)
			if key == "" {
				continue
			}
			if c.strict && !c.knownColumn(key) {
				continue
			}
			out.OrderColumns = append(out.OrderColumns, entity.Column{Key: key, Enabled: sanitize.Bool(v.Value)})
		}
		if len(out.OrderColumns.Enabled()) == 0 {
			c.log.Warn("settings saved without any enabled column")
		}
	}

	if input.StatusLabels != nil {
		out.StatusLabels = make(map[string]string, len(input.StatusLabels))
		for _, v := range input.StatusLabels {
			status := entity.PlainStatus(sanitize.Key(v.Key))
			if !c.isManagedStatus(status) {
				continue
			}
			out.StatusLabels[status] = sanitize.Text(sanitize.String(v.Value))
		}
	}

	if input.RoleAccess != nil {
		out.RoleAccess = make(entity.RoleAccess, len(input.RoleAccess))
		for _, v := range input.RoleAccess {
			role := entity.Role(sanitize.Key(v.Key))
			if !role.Valid() {
				continue
			}
			out.RoleAccess[role] = sanitize.Bool(v.Value)
		}
	}

	return out
}

// SaveSettings verifies the submission, sanitizes and stores it, and returns
// the effective settings.
func (c *Core) SaveSettings(ctx context.Context, actor *entity.UserAuth, nonce, remoteIP string, input *entity.SettingsForm) (*entity.Settings, error) {
	log := c.log.With(slog.Int64("user_id", actor.ID))

	if c.tokens == nil || c.tokens.VerifyNonce(nonce, entity.ActionSaveSettings, actor.ID) != nil {
		c.guard.LogSecurityEvent(ctx, security.EventInvalidNonce, actor, remoteIP, map[string]any{"action": entity.ActionSaveSettings})
		return nil, apierrors.NewInvalidNonceError()
	}

	current, err := c.LoadSettings(ctx)
	if err != nil {
		log.With(sl.Err(err)).Error("save settings")
		return nil, apierrors.NewInternalError("Failed to save settings")
	}
	if !actor.CanManageOrders() || !security.HasAccess(actor, current.RoleAccess) {
		c.guard.LogSecurityEvent(ctx, security.EventUnauthorizedSettings, actor, remoteIP, nil)
		return nil, apierrors.NewForbiddenError("You do not have permission to change these settings.")
	}

	sanitized := c.SanitizeSettings(input)
	if err = c.storeSettings(ctx, sanitized); err != nil {
		log.With(sl.Err(err)).Error("save settings")
		return nil, apierrors.NewInternalError("Failed to save settings")
	}

	c.guard.LogSecurityEvent(ctx, security.EventSettingsSaved, actor, remoteIP, nil)
	return sanitized.WithDefaults(), nil
}

func (c *Core) storeSettings(ctx context.Context, settings *entity.Settings) error {
	if c.options == nil {
		return fmt.Errorf("config store not set")
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return c.options.UpdateOption(ctx, entity.SettingsOptionKey, string(data))
}

// SettingsView assembles the settings page for actor.
func (c *Core) SettingsView(ctx context.Context, actor *entity.UserAuth) (*entity.SettingsView, error) {
	settings, err := c.LoadSettings(ctx)
	if err != nil {
		return nil, err
	}
	view := &entity.SettingsView{
		Settings:  settings,
		Available: c.ColumnCatalogue(),
		Statuses:  c.Statuses(),
		Roles: []entity.Role{
			entity.RoleAdministrator,
			entity.RoleShopManager,
			entity.RoleEditor,
			entity.RoleAuthor,
			entity.RoleContributor,
			entity.RoleSubscriber,
			entity.RoleCustomer,
		},
	}
	if c.tokens != nil {
		if view.Nonce, err = c.tokens.CreateNonce(entity.ActionSaveSettings, actor.ID); err != nil {
			return nil, fmt.Errorf("create nonce: %w", err)
		}
	}
	return view, nil
}

// Install writes the default settings unless settings already exist and
// creates the activity log table.
func (c *Core) Install(ctx context.Context) error {
	if c.schema != nil {
		if err := c.schema.CreateTables(ctx); err != nil {
			return err
		}
	}
	if c.options == nil {
		return fmt.Errorf("config store not set")
	}
	_, found, err := c.options.GetOption(ctx, entity.SettingsOptionKey)
	if err != nil {
		return fmt.Errorf("install: %w", err)
	}
	if found {
		c.log.Info("settings already present, keeping them")
		return nil
	}
	if err = c.storeSettings(ctx, entity.DefaultSettings()); err != nil {
		return fmt.Errorf("install: %w", err)
	}
	c.log.Info("default settings installed")
	return nil
}

// Uninstall removes the settings option. With dropTables the activity log
// table is removed too.
func (c *Core) Uninstall(ctx context.Context, dropTables bool) error {
	if c.options == nil {
		return fmt.Errorf("config store not set")
	}
	if err := c.options.DeleteOption(ctx, entity.SettingsOptionKey); err != nil {
		return fmt.Errorf("uninstall: %w", err)
	}
	if c.purger != nil {
		removed, err := c.purger.DeleteCounters(ctx, security.RateLimitPrefix)
		if err != nil {
			return fmt.Errorf("uninstall: %w", err)
		}
		c.log.Info("rate-limit counters removed", slog.Int64("count", removed))
	}
	if dropTables && c.schema != nil {
		if err := c.schema.DropTables(ctx); err != nil {
			return fmt.Errorf("uninstall: %w", err)
		}
	}
	c.log.Info("settings removed")
	return nil
}
