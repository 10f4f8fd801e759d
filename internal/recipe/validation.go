package recipe

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/recipebox/internal/model"
)

const (
	maxNameLength = 256
	maxNoteLength = 256
)

// writeModel は検証済みの書き込み内容。nilの項目は更新しない。
type writeModel struct {
	name        *string
	description *string
	cookingTime *int
	imageURL    *string
	tagIDs      []string
	tagsSet     bool
	lines       []model.RecipeIngredient
}

// applyTo は検証済みの属性をレシピに反映する。
func (w *writeModel) applyTo(r *model.Recipe) {
	if w.name != nil {
		r.Name = *w.name
	}
	if w.description != nil {
		r.Description = *w.description
	}
	if w.cookingTime != nil {
		r.CookingTime = *w.cookingTime
	}
	if w.imageURL != nil {
		r.ImageURL = *w.imageURL
	}
}

// canonicalID はUUIDとして解釈できるIDを小文字ハイフン区切りの正規形に揃える。
// PostgreSQLは正規形で行を返すため、重複判定と存在確認の突き合わせはこの形で行う。
// 解釈できない値はそのまま返し、存在しないIDとして報告させる。
func canonicalID(raw string) string {
	id := strings.TrimSpace(raw)
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}

func lineIndex(i int) *int {
	return &i
}

// ValidateIngredientLines は材料行を一括検証する。
// 最初の問題で打ち切らず、全行の問題と存在しない材料をまとめて返す。
// 戻り値のerrorはカタログの参照に失敗した場合のみ非nilになる。
func (s *Service) ValidateIngredientLines(ctx context.Context, lines []LineInput) ([]model.RecipeIngredient, []model.FieldError, error) {
	if len(lines) == 0 {
		return nil, []model.FieldError{{
			Field:   "ingredients",
			Code:    model.ErrCodeEmptyIngredients,
			Message: "材料を1つ以上追加してください。",
		}}, nil
	}

	var details []model.FieldError
	valid := make([]model.RecipeIngredient, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	var ids []string

	for i, line := range lines {
		n := i + 1
		id := canonicalID(line.IngredientID)
		lineOK := true

		if id == "" {
			details = append(details, model.FieldError{
				Field:   "ingredients",
				Index:   lineIndex(i),
				Code:    model.ErrCodeMissingID,
				Message: fmt.Sprintf("%d行目: 材料を指定してください。", n),
			})
			lineOK = false
		}

		var amount int
		if isAbsent(line.Amount) {
			details = append(details, model.FieldError{
				Field:   "ingredients",
				Index:   lineIndex(i),
				Code:    model.ErrCodeMissingAmount,
				Message: fmt.Sprintf("%d行目: 分量を指定してください。", n),
			})
			lineOK = false
		} else if v, ok := parsePositiveInt(line.Amount); ok {
			amount = v
		} else {
			details = append(details, model.FieldError{
				Field:   "ingredients",
				Index:   lineIndex(i),
				Code:    model.ErrCodeInvalidAmount,
				Message: fmt.Sprintf("%d行目: 分量は1以上の整数で指定してください。", n),
			})
			lineOK = false
		}

		note := strings.TrimSpace(line.Note)
		if utf8.RuneCountInString(note) > maxNoteLength {
			details = append(details, model.FieldError{
				Field:   "ingredients",
				Index:   lineIndex(i),
				Code:    model.ErrCodeInvalidField,
				Message: fmt.Sprintf("%d行目: メモは%d文字以内で入力してください。", n, maxNoteLength),
			})
			lineOK = false
		}

		if id != "" {
			if _, dup := seen[id]; dup {
				details = append(details, model.FieldError{
					Field:   "ingredients",
					Index:   lineIndex(i),
					Code:    model.ErrCodeDuplicateIngredient,
					Message: fmt.Sprintf("%d行目: 材料が重複しています: %s", n, id),
					IDs:     []string{id},
				})
				lineOK = false
			} else {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}

		if lineOK {
			valid = append(valid, model.RecipeIngredient{
				IngredientID: id,
				Amount:       amount,
				Note:         note,
			})
		}
	}

	if len(ids) > 0 {
		existing, err := s.ingredients.FindExistingIDs(ctx, ids)
		if err != nil {
			return nil, nil, fmt.Errorf("材料の存在確認に失敗しました: %w", err)
		}
		if missing := missingIDs(ids, existing); len(missing) > 0 {
			details = append(details, model.FieldError{
				Field:   "ingredients",
				Code:    model.ErrCodeUnknownIngredient,
				Message: fmt.Sprintf("存在しない材料が指定されています: %s", strings.Join(missing, ", ")),
				IDs:     missing,
			})
		}
	}

	if len(details) > 0 {
		return nil, details, nil
	}
	return valid, nil, nil
}

// validateTags はタグIDの重複と存在を検証する。
func (s *Service) validateTags(ctx context.Context, tagIDs []string) ([]string, []model.FieldError, error) {
	var details []model.FieldError
	seen := make(map[string]struct{}, len(tagIDs))
	ids := make([]string, 0, len(tagIDs))

	for i, raw := range tagIDs {
		id := canonicalID(raw)
		if _, dup := seen[id]; dup {
			details = append(details, model.FieldError{
				Field:   "tags",
				Index:   lineIndex(i),
				Code:    model.ErrCodeDuplicateTag,
				Message: fmt.Sprintf("%d番目: タグが重複しています: %s", i+1, id),
				IDs:     []string{id},
			})
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if len(ids) > 0 {
		existing, err := s.tags.FindExistingIDs(ctx, ids)
		if err != nil {
			return nil, nil, fmt.Errorf("タグの存在確認に失敗しました: %w", err)
		}
		if missing := missingIDs(ids, existing); len(missing) > 0 {
			details = append(details, model.FieldError{
				Field:   "tags",
				Code:    model.ErrCodeUnknownTag,
				Message: fmt.Sprintf("存在しないタグが指定されています: %s", strings.Join(missing, ", ")),
				IDs:     missing,
			})
		}
	}
	return ids, details, nil
}

// missingIDs はidsのうちexistingに含まれないものを入力順に返す。
func missingIDs(ids, existing []string) []string {
	found := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		found[id] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// toWriteModel は入力を検証して書き込み内容に変換する。
// creatingがtrueの場合は全項目を必須とする。材料行は作成・更新のどちらでも必須。
// 問題は材料行、タグ、属性をまとめて1つのバリデーションエラーとして返す。
func (s *Service) toWriteModel(ctx context.Context, in Input, creating bool) (*writeModel, error) {
	w := &writeModel{}
	var details []model.FieldError

	if in.Name != nil || creating {
		name := ""
		if in.Name != nil {
			name = s.sanitizer.SanitizeName(*in.Name)
		}
		switch {
		case name == "":
			details = append(details, missingField("name", "レシピ名を入力してください。"))
		case utf8.RuneCountInString(name) > maxNameLength:
			details = append(details, invalidField("name", fmt.Sprintf("レシピ名は%d文字以内で入力してください。", maxNameLength)))
		default:
			w.name = &name
		}
	}

	if in.Description != nil || creating {
		description := ""
		if in.Description != nil {
			description = strings.TrimSpace(s.sanitizer.SanitizeDescription(*in.Description))
		}
		if description == "" {
			details = append(details, missingField("text", "作り方を入力してください。"))
		} else {
			w.description = &description
		}
	}

	if !isAbsent(in.CookingTime) {
		if v, ok := parsePositiveInt(in.CookingTime); ok {
			w.cookingTime = &v
		} else {
			details = append(details, invalidField("cooking_time", "調理時間は1以上の整数（分）で指定してください。"))
		}
	} else if creating {
		details = append(details, missingField("cooking_time", "調理時間を入力してください。"))
	}

	if in.ImageURL != nil || creating {
		imageURL := ""
		if in.ImageURL != nil {
			imageURL = strings.TrimSpace(*in.ImageURL)
		}
		if imageURL == "" {
			details = append(details, missingField("image", "画像を指定してください。"))
		} else if err := s.images.Check(ctx, imageURL); err != nil {
			details = append(details, model.FieldError{
				Field:   "image",
				Code:    model.ErrCodeInvalidImage,
				Message: "画像のURLが正しくないか、画像を取得できません。",
			})
		} else {
			w.imageURL = &imageURL
		}
	}

	if in.Tags != nil {
		ids, tagDetails, err := s.validateTags(ctx, *in.Tags)
		if err != nil {
			return nil, err
		}
		details = append(details, tagDetails...)
		w.tagIDs = ids
		w.tagsSet = true
	}

	if in.Ingredients == nil {
		details = append(details, missingField("ingredients", "材料を指定してください。"))
	} else {
		lines, lineDetails, err := s.ValidateIngredientLines(ctx, *in.Ingredients)
		if err != nil {
			return nil, err
		}
		details = append(details, lineDetails...)
		w.lines = lines
	}

	if len(details) > 0 {
		return nil, model.NewValidationError(details)
	}
	return w, nil
}

func missingField(field, message string) model.FieldError {
	return model.FieldError{Field: field, Code: model.ErrCodeMissingField, Message: message}
}

func invalidField(field, message string) model.FieldError {
	return model.FieldError{Field: field, Code: model.ErrCodeInvalidField, Message: message}
}
