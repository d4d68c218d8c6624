package service

import (
	"encoding/json"
	"fmt"
	"logicfy_backend/internal/model"
	"logicfy_backend/internal/util"
	"strings"
)

// Grader 按题型比较作答与答案键
type Grader struct{}

func NewGrader() *Grader {
	return &Grader{}
}

type choicePayload struct {
	OptionID *uint `json:"optionId"`
}

type codePayload struct {
	Code string `json:"code"`
}

type previewPayload struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
}

// Grade 负载不是合法 JSON 时返回 ErrInvalidPayload；缺少答案键的题目判为错误
func (g *Grader) Grade(q *model.Question, payload json.RawMessage) (bool, error) {
	if len(payload) == 0 || !json.Valid(payload) {
		return false, fmt.Errorf("%w: payload must be a JSON object", util.ErrInvalidPayload)
	}

	switch q.Kind {
	case model.KindMultipleChoice:
		var p choicePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return false, fmt.Errorf("%w: %v", util.ErrInvalidPayload, err)
		}
		if p.OptionID == nil || q.CorrectOptionID == nil {
			return false, nil
		}
		// 答案键必须指向本题自己的选项
		if !q.HasOption(*q.CorrectOptionID) {
			return false, nil
		}
		return *p.OptionID == *q.CorrectOptionID, nil

	case model.KindCodeCompletion:
		var p codePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return false, fmt.Errorf("%w: %v", util.ErrInvalidPayload, err)
		}
		if q.WordBlock == nil || strings.TrimSpace(q.WordBlock.CorrectCode) == "" {
			return false, nil
		}
		return NormalizeCode(p.Code) == NormalizeCode(q.WordBlock.CorrectCode), nil

	case model.KindFunctionSolution:
		var p codePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return false, fmt.Errorf("%w: %v", util.ErrInvalidPayload, err)
		}
		answer := NormalizeCode(p.Code)
		if answer == "" {
			return false, nil
		}
		for _, s := range q.FunctionSolutions {
			if NormalizeCode(s.SolutionCode) == answer {
				return true, nil
			}
		}
		return false, nil

	case model.KindLivePreview:
		var p previewPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return false, fmt.Errorf("%w: %v", util.ErrInvalidPayload, err)
		}
		if q.LivePreview == nil {
			return false, nil
		}
		return gradePreview(q.LivePreview, p), nil
	}

	return false, nil
}

func gradePreview(key *model.QuestionLivePreview, p previewPayload) bool {
	html := strings.ToLower(NormalizeCode(p.HTML))
	css := strings.ToLower(NormalizeCode(p.CSS))

	if strings.TrimSpace(key.CorrectHTML) != "" {
		if html == strings.ToLower(NormalizeCode(key.CorrectHTML)) &&
			css == strings.ToLower(NormalizeCode(key.CorrectCSS)) {
			return true
		}
	}

	tags := decodeList(key.RequiredTagsJSON)
	styles := decodeList(key.RequiredStylesJSON)
	if len(tags) == 0 && len(styles) == 0 {
		return false
	}
	for _, tag := range tags {
		if !strings.Contains(html, "<"+strings.ToLower(strings.Trim(tag, "<> "))) {
			return false
		}
	}
	compactCSS := stripSpaces(css)
	for _, style := range styles {
		if !strings.Contains(compactCSS, stripSpaces(strings.ToLower(style))) {
			return false
		}
	}
	return true
}

func decodeList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	out := list[:0]
	for _, s := range list {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// NormalizeCode 统一换行、去首尾空白并折叠连续空白
func NormalizeCode(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Join(strings.Fields(s), " ")
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
