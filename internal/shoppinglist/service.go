// Package shoppinglist は買い物リストに入れたレシピの材料を集計する。
package shoppinglist

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/hitoshi/recipebox/internal/model"
	"github.com/hitoshi/recipebox/internal/repository"
)

// Header はダウンロードする買い物リストの1行目。
const Header = "買い物リスト"

// Item は(材料名, 単位)ごとに集計した1行。
type Item struct {
	Name            string
	MeasurementUnit string
	Total           int
	Notes           []string
}

// String は "{name} - {total} {unit}" 形式の1行を返す。メモがある場合は括弧で続ける。
func (i Item) String() string {
	line := fmt.Sprintf("%s - %d %s", i.Name, i.Total, i.MeasurementUnit)
	if len(i.Notes) > 0 {
		line += " (" + strings.Join(i.Notes, ", ") + ")"
	}
	return line
}

// Report は集計済みの買い物リスト。
type Report struct {
	Items []Item
}

// Text はヘッダー行に続けて各行を改行区切りで出力する。
func (r *Report) Text() string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n")
	for _, item := range r.Items {
		b.WriteString(item.String())
		b.WriteString("\n")
	}
	return b.String()
}

// DownloadRecorder は買い物リストのダウンロードを記録するインターフェース。
type DownloadRecorder interface {
	RecordShoppingListDownload(lines int)
}

// Service は買い物リスト集計のサービス層。
type Service struct {
	relationRepo repository.RelationRepository
	recorder     DownloadRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(relationRepo repository.RelationRepository) *Service {
	return &Service{relationRepo: relationRepo}
}

// SetRecorder はダウンロードを記録するレコーダーを設定する。
func (s *Service) SetRecorder(r DownloadRecorder) {
	s.recorder = r
}

// Build はユーザーの買い物リストを集計する。買い物リストが空の場合はEMPTY_SHOPPING_CARTを返す。
func (s *Service) Build(ctx context.Context, userID string) (*Report, error) {
	count, err := s.relationRepo.CountByUser(ctx, model.RelationShoppingCart, userID)
	if err != nil {
		return nil, fmt.Errorf("買い物リストの件数取得に失敗しました: %w", err)
	}
	if count == 0 {
		return nil, model.NewEmptyShoppingCartError()
	}

	lines, err := s.relationRepo.ListCartLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("買い物リストの材料取得に失敗しました: %w", err)
	}

	report := Aggregate(lines)
	if s.recorder != nil {
		s.recorder.RecordShoppingListDownload(len(report.Items))
	}
	slog.Info("買い物リストを集計しました",
		slog.String("user_id", userID),
		slog.Int("recipes", count),
		slog.Int("items", len(report.Items)),
	)
	return report, nil
}

type groupKey struct {
	name string
	unit string
}

// Aggregate は材料行を(材料名, 単位)でまとめ、分量を合計する。
// 材料IDが異なっても名前と単位が同じ行は1行になる。
// メモは重複と空文字を除いて並べ替え、行は材料名、単位の順に並べる。
func Aggregate(lines []model.IngredientLine) *Report {
	items := make(map[groupKey]*Item)
	notes := make(map[groupKey]map[string]struct{})

	for _, l := range lines {
		key := groupKey{name: l.Name, unit: l.MeasurementUnit}
		item, ok := items[key]
		if !ok {
			item = &Item{Name: l.Name, MeasurementUnit: l.MeasurementUnit}
			items[key] = item
			notes[key] = make(map[string]struct{})
		}
		item.Total += l.Amount
		if note := strings.TrimSpace(l.Note); note != "" {
			notes[key][note] = struct{}{}
		}
	}

	report := &Report{Items: make([]Item, 0, len(items))}
	for key, item := range items {
		for note := range notes[key] {
			item.Notes = append(item.Notes, note)
		}
		sort.Strings(item.Notes)
		report.Items = append(report.Items, *item)
	}
	sort.Slice(report.Items, func(i, j int) bool {
		a, b := report.Items[i], report.Items[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.MeasurementUnit < b.MeasurementUnit
	})
	return report
}
