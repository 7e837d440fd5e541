package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"easyorders/entity"

	"github.com/olekukonko/tablewriter"
)

const logTimeLayout = "2006-01-02 15:04:05"

func printLogs(w io.Writer, logs *entity.LogPage, loc *time.Location) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Date", "User", "Order", "Action", "Details")
	for _, entry := range logs.Entries {
		err := table.Append([]string{
			strconv.FormatInt(entry.ID, 10),
			entry.CreatedAt.In(loc).Format(logTimeLayout),
			entry.UserName,
			entry.OrderID,
			entry.Action,
			entry.Details,
		})
		if err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "page %d of %d, %d entries\n", logs.Page, logs.TotalPages, logs.Total)
	return err
}

func printSettings(w io.Writer, settings *entity.Settings) error {
	table := tablewriter.NewWriter(w)
	table.Header("Section", "Key", "Value")

	rows := [][]string{
		{"orders_per_page", "", strconv.Itoa(settings.OrdersPerPage)},
	}
	for _, col := range settings.OrderColumns {
		rows = append(rows, []string{"order_columns", col.Key, strconv.FormatBool(col.Enabled)})
	}
	for _, key := range sortedKeys(settings.StatusLabels) {
		rows = append(rows, []string{"status_labels", key, settings.StatusLabels[key]})
	}
	roles := make([]string, 0, len(settings.RoleAccess))
	for role := range settings.RoleAccess {
		roles = append(roles, string(role))
	}
	sort.Strings(roles)
	for _, role := range roles {
		rows = append(rows, []string{"role_access", role, strconv.FormatBool(settings.RoleAccess[entity.Role(role)])})
	}

	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
