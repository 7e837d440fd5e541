package cont

import (
	"context"

	"easyorders/entity"
)

type ctxKey string

const (
	UserDataKey ctxKey = "userData"
	ClientIPKey ctxKey = "clientIP"
)

func PutUser(c context.Context, user *entity.UserAuth) context.Context {
	return context.WithValue(c, UserDataKey, *user)
}

// GetUser returns an anonymous actor when no session was attached.
func GetUser(c context.Context) *entity.UserAuth {
	user, ok := c.Value(UserDataKey).(entity.UserAuth)
	if !ok {
		return &entity.UserAuth{}
	}
	return &user
}

func PutClientIP(c context.Context, ip string) context.Context {
	return context.WithValue(c, ClientIPKey, ip)
}

func GetClientIP(c context.Context) string {
	ip, ok := c.Value(ClientIPKey).(string)
	if !ok || ip == "" {
		return "0.0.0.0"
	}
	return ip
}
