package service

import (
	"encoding/json"
	"logicfy_backend/internal/model"
	"logicfy_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "int main() { return 0; }", NormalizeCode("  int main()\r\n{\n\treturn 0;\r}  "))
	assert.Equal(t, "", NormalizeCode(" \n\t "))
	assert.Equal(t, "a b", NormalizeCode("a\r\rb"))
}

func TestGrade_MultipleChoice(t *testing.T) {
	g := NewGrader()
	q := &model.Question{
		Kind:            model.KindMultipleChoice,
		CorrectOptionID: uintPtr(11),
		Options:         []model.QuestionOption{{BaseModel: model.BaseModel{ID: 11}}, {BaseModel: model.BaseModel{ID: 12}}},
	}

	cases := []struct {
		name    string
		payload string
		want    bool
	}{
		{"correct option", `{"optionId":11}`, true},
		{"wrong option", `{"optionId":12}`, false},
		{"missing option", `{}`, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ok, err := g.Grade(q, json.RawMessage(c.payload))
			require.NoError(t, err)
			assert.Equal(t, c.want, ok)
		})
	}

	// 答案键缺失或指向别的题的选项
	noKey := &model.Question{Kind: model.KindMultipleChoice, Options: q.Options}
	ok, err := g.Grade(noKey, json.RawMessage(`{"optionId":11}`))
	require.NoError(t, err)
	assert.False(t, ok)

	foreign := &model.Question{Kind: model.KindMultipleChoice, CorrectOptionID: uintPtr(99), Options: q.Options}
	ok, err = g.Grade(foreign, json.RawMessage(`{"optionId":99}`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGrade_CodeCompletion(t *testing.T) {
	g := NewGrader()
	q := &model.Question{
		Kind:      model.KindCodeCompletion,
		WordBlock: &model.QuestionWordBlock{CorrectCode: "printf(\"hi\");\nreturn 0;"},
	}

	ok, err := g.Grade(q, json.RawMessage(`{"code":"  printf(\"hi\");   return 0;\r\n"}`))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Grade(q, json.RawMessage(`{"code":"return 1;"}`))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = g.Grade(&model.Question{Kind: model.KindCodeCompletion}, json.RawMessage(`{"code":""}`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGrade_FunctionSolution(t *testing.T) {
	g := NewGrader()
	q := &model.Question{
		Kind: model.KindFunctionSolution,
		FunctionSolutions: []model.QuestionFunctionSolution{
			{SolutionCode: "int add(int a, int b) { return a + b; }"},
			{SolutionCode: "int add(int a, int b) { return b + a; }"},
		},
	}

	ok, err := g.Grade(q, json.RawMessage(`{"code":"int add(int a, int b) {\n  return b + a;\n}"}`))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Grade(q, json.RawMessage(`{"code":"   "}`))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = g.Grade(&model.Question{Kind: model.KindFunctionSolution}, json.RawMessage(`{"code":"x"}`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGrade_LivePreview(t *testing.T) {
	g := NewGrader()
	exact := &model.Question{
		Kind:        model.KindLivePreview,
		LivePreview: &model.QuestionLivePreview{CorrectHTML: "<H1>Hi</H1>", CorrectCSS: "h1 { color: red; }"},
	}
	ok, err := g.Grade(exact, json.RawMessage(`{"html":"<h1>hi</h1>","css":"h1 {  color: red; }"}`))
	require.NoError(t, err)
	assert.True(t, ok)

	required := &model.Question{
		Kind: model.KindLivePreview,
		LivePreview: &model.QuestionLivePreview{
			RequiredTagsJSON:   `["h1","<p>"]`,
			RequiredStylesJSON: `["color: red"]`,
		},
	}
	ok, err = g.Grade(required, json.RawMessage(`{"html":"<h1 class=\"t\">x</h1><p>y</p>","css":"h1{color:red}"}`))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Grade(required, json.RawMessage(`{"html":"<h1>x</h1>","css":"h1{color:red}"}`))
	require.NoError(t, err)
	assert.False(t, ok)

	empty := &model.Question{Kind: model.KindLivePreview, LivePreview: &model.QuestionLivePreview{}}
	ok, err = g.Grade(empty, json.RawMessage(`{"html":"","css":""}`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGrade_MalformedPayload(t *testing.T) {
	g := NewGrader()
	q := &model.Question{Kind: model.KindCodeCompletion, WordBlock: &model.QuestionWordBlock{CorrectCode: "x"}}

	for _, raw := range []string{``, `{"code":`, `"just a string"`} {
		_, err := g.Grade(q, json.RawMessage(raw))
		assert.ErrorIs(t, err, util.ErrInvalidPayload, "payload %q", raw)
	}
}

func TestGrade_UnknownKindIsIncorrect(t *testing.T) {
	ok, err := NewGrader().Grade(&model.Question{Kind: 42}, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.False(t, ok)
}
