package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"easyorders/entity"
)

// capabilityPattern picks granted role names out of the serialized
// capabilities array kept in user meta, e.g. a:1:{s:13:"administrator";b:1;}
var capabilityPattern = regexp.MustCompile(`s:\d+:"([a-z0-9_-]+)";(?:b:1|i:1|s:1:"1")`)

func (s *MySql) GetUserByLogin(ctx context.Context, login string) (*entity.User, error) {
	stmt, err := s.stmtSelectUserByLogin()
	if err != nil {
		return nil, err
	}

	var user entity.User
	var capabilities string
	err = stmt.QueryRowContext(ctx, s.prefix+"capabilities", login, login).Scan(
		&user.ID,
		&user.Login,
		&user.Name,
		&user.PasswordHash,
		&capabilities,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	user.Roles = parseRoles(capabilities)
	return &user, nil
}

// parseRoles keeps only roles of the known set.
func parseRoles(capabilities string) []entity.Role {
	var roles []entity.Role
	for _, m := range capabilityPattern.FindAllStringSubmatch(capabilities, -1) {
		role := entity.Role(m[1])
		if role.Valid() {
			roles = append(roles, role)
		}
	}
	return roles
}
