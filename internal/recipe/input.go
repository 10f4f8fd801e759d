// Package recipe はレシピ集約の検証、作成、更新、削除と閲覧者別の表示を提供する。
package recipe

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Input はレシピ作成・更新の入力。
// 更新時は省略した項目（nil）を現在の値のまま残す。材料行のみ更新時も必須。
type Input struct {
	Name        *string         `json:"name"`
	Description *string         `json:"text"`
	CookingTime json.RawMessage `json:"cooking_time"`
	ImageURL    *string         `json:"image"`
	Tags        *[]string       `json:"tags"`
	Ingredients *[]LineInput    `json:"ingredients"`
}

// LineInput は材料行の入力。
// Amountは数値と数値文字列の両方を受け付けるため未解釈のまま保持する。
type LineInput struct {
	IngredientID string          `json:"id"`
	Amount       json.RawMessage `json:"amount"`
	Note         string          `json:"note"`
}

// isAbsent は値が省略またはnullかを判定する。
func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// parsePositiveInt はJSONの数値または数値文字列を1以上の整数として解釈する。
// 2.0のように小数部が0の数値は整数として扱う。
func parsePositiveInt(raw json.RawMessage) (int, bool) {
	trimmed := bytes.TrimSpace(raw)

	var s string
	if len(trimmed) > 0 && trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(s)
	} else {
		s = string(trimmed)
	}

	if n, err := strconv.Atoi(s); err == nil {
		return n, n >= 1 && n <= math.MaxInt32
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f != math.Trunc(f) || f < 1 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
