package settings

import (
	"context"

	"easyorders/entity"
)

type Core interface {
	SettingsView(ctx context.Context, actor *entity.UserAuth) (*entity.SettingsView, error)
	SaveSettings(ctx context.Context, actor *entity.UserAuth, nonce, remoteIP string, input *entity.SettingsForm) (*entity.Settings, error)
}
