package postgresql

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workflow"
)

// jsonbArray marshals a slice for a NOT NULL JSONB column; nil becomes [].
func jsonbArray(v interface{}) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() == reflect.Slice && rv.IsNil()) {
		return []byte("[]"), nil
	}
	return json.Marshal(v)
}

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// visibilityClause renders workflow.Visibility as a WHERE fragment over a
// table with employee_id, current_level and approvals columns.
func visibilityClause(v workflow.Visibility, argIdx int) (string, []interface{}, int) {
	if v.All {
		return "TRUE", nil, argIdx
	}

	var parts []string
	var args []interface{}
	if v.EmployeeID != "" {
		parts = append(parts, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, v.EmployeeID)
		argIdx++
	}
	if len(v.Levels) > 0 {
		parts = append(parts, fmt.Sprintf("current_level = ANY($%d)", argIdx))
		args = append(args, v.Levels)
		argIdx++
		parts = append(parts, fmt.Sprintf("approvals @> jsonb_build_array(jsonb_build_object('approver_id', $%d::text))", argIdx))
		args = append(args, v.UserID)
		argIdx++
	}
	if len(parts) == 0 {
		return "FALSE", nil, argIdx
	}
	return "(" + strings.Join(parts, " OR ") + ")", args, argIdx
}
