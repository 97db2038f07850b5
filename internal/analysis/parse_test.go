package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReply = `{"metadata":{"title":"예시"},"sequences":[{"seq_id":1,"summary":"한 인물이 다리를 전다","core_message":"신체적 손상의 상징","theme_keyword":"전쟁","details":[{"fact":"다리를 절며 걸었다","interpretation":"전쟁이 남긴 신체적 상처"}]}]}`

func TestParseResult(t *testing.T) {
	t.Run("full result", func(t *testing.T) {
		r, err := ParseResult(sampleReply)
		require.NoError(t, err)

		assert.Equal(t, "예시", r.Metadata.Title)
		assert.Nil(t, r.BreakPoint)
		require.Len(t, r.Sequences, 1)

		seq := r.Sequences[0]
		assert.Equal(t, 1, seq.SeqID)
		assert.Equal(t, "한 인물이 다리를 전다", seq.Summary)
		assert.Equal(t, "신체적 손상의 상징", seq.CoreMessage)
		assert.Equal(t, "전쟁", seq.ThemeKeyword)
		require.Len(t, seq.Details, 1)
		assert.Equal(t, "다리를 절며 걸었다", seq.Details[0].Fact)
		assert.Equal(t, "전쟁이 남긴 신체적 상처", seq.Details[0].Interpretation)
	})

	t.Run("break point", func(t *testing.T) {
		r, err := ParseResult(`{"structure_break_point":{"after_sequence":2,"description":"중략","change_state":{"before":"A","after":"B"}},"sequences":[]}`)
		require.NoError(t, err)

		require.NotNil(t, r.BreakPoint)
		assert.Equal(t, 2, r.BreakPoint.AfterSequence)
		assert.Equal(t, "중략", r.BreakPoint.Description)
		assert.Equal(t, "A", r.BreakPoint.ChangeState.Before)
		assert.Equal(t, "B", r.BreakPoint.ChangeState.After)
		assert.True(t, r.BreaksAfter(2))
		assert.False(t, r.BreaksAfter(1))
	})

	t.Run("optional fields default", func(t *testing.T) {
		r, err := ParseResult(`{"sequences":[{"seq_id":3,"summary":"s","core_message":"c","theme_keyword":"k"}]}`)
		require.NoError(t, err)

		assert.Equal(t, "", r.Metadata.Title)
		assert.Equal(t, "분석 결과", r.Title("분석 결과"))
		require.Len(t, r.Sequences, 1)
		assert.Empty(t, r.Sequences[0].Details)
	})

	t.Run("missing sequences is empty", func(t *testing.T) {
		r, err := ParseResult(`{"metadata":{"title":"t"}}`)
		require.NoError(t, err)
		assert.Empty(t, r.Sequences)
	})

	t.Run("empty or null break point is absent", func(t *testing.T) {
		for _, in := range []string{
			`{"structure_break_point":{},"sequences":[]}`,
			`{"structure_break_point":null,"sequences":[]}`,
		} {
			r, err := ParseResult(in)
			require.NoError(t, err, in)
			assert.Nil(t, r.BreakPoint, in)
		}
	})

	t.Run("break point without after_sequence is absent", func(t *testing.T) {
		r, err := ParseResult(`{"structure_break_point":{"description":"d","change_state":{"before":"A","after":"B"}},"sequences":[]}`)
		require.NoError(t, err)
		assert.Nil(t, r.BreakPoint)
	})

	t.Run("unmatched break point needs no change_state", func(t *testing.T) {
		r, err := ParseResult(`{"structure_break_point":{"after_sequence":9},"sequences":[{"seq_id":1,"summary":"s","core_message":"c","theme_keyword":"k"}]}`)
		require.NoError(t, err)
		require.NotNil(t, r.BreakPoint)
		assert.Equal(t, 9, r.BreakPoint.AfterSequence)
		assert.Equal(t, ChangeState{}, r.BreakPoint.ChangeState)
		assert.False(t, r.BreaksAfter(1))
		require.Len(t, r.Sequences, 1)
	})

	t.Run("description is optional", func(t *testing.T) {
		r, err := ParseResult(`{"structure_break_point":{"after_sequence":1,"change_state":{"before":"A","after":"B"}}}`)
		require.NoError(t, err)
		require.NotNil(t, r.BreakPoint)
		assert.Equal(t, "", r.BreakPoint.Description)
	})

	t.Run("order preserved", func(t *testing.T) {
		r, err := ParseResult(`{"sequences":[
			{"seq_id":3,"summary":"c","core_message":"c","theme_keyword":"c"},
			{"seq_id":1,"summary":"a","core_message":"a","theme_keyword":"a"},
			{"seq_id":1,"summary":"dup","core_message":"d","theme_keyword":"d"}
		]}`)
		require.NoError(t, err)
		require.Len(t, r.Sequences, 3)
		assert.Equal(t, []int{3, 1, 1}, []int{r.Sequences[0].SeqID, r.Sequences[1].SeqID, r.Sequences[2].SeqID})
	})
}

func TestParseResult_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    Kind
		message string
	}{
		{"malformed", `{"sequences": [`, KindMalformedJSON, "malformed JSON"},
		{"trailing comma", `{"a": 1,}`, KindMalformedJSON, "malformed JSON"},
		{"not an object", `[1, 2]`, KindSchema, "not an object"},
		{"missing seq_id", `{"sequences":[{"summary":"s","core_message":"c","theme_keyword":"k"}]}`, KindSchema, "sequences[0]: missing seq_id"},
		{"missing summary", `{"sequences":[{"seq_id":1,"core_message":"c","theme_keyword":"k"}]}`, KindSchema, "missing summary"},
		{"missing core_message", `{"sequences":[{"seq_id":1,"summary":"s","theme_keyword":"k"}]}`, KindSchema, "missing core_message"},
		{"missing theme_keyword", `{"sequences":[{"seq_id":1,"summary":"s","core_message":"c"}]}`, KindSchema, "missing theme_keyword"},
		{"missing fact", `{"sequences":[{"seq_id":1,"summary":"s","core_message":"c","theme_keyword":"k","details":[{"interpretation":"i"}]}]}`, KindSchema, "details[0]: missing fact"},
		{"missing interpretation", `{"sequences":[{"seq_id":1,"summary":"s","core_message":"c","theme_keyword":"k","details":[{"fact":"f"}]}]}`, KindSchema, "missing interpretation"},
		{"seq_id wrong type", `{"sequences":[{"seq_id":"one","summary":"s","core_message":"c","theme_keyword":"k"}]}`, KindSchema, "schema violation"},
		{"null", `null`, KindSchema, "not an object"},
		{"string", `"text"`, KindSchema, "not an object"},
		{"break point without change_state", `{"structure_break_point":{"after_sequence":1,"description":"d"},"sequences":[{"seq_id":1,"summary":"s","core_message":"c","theme_keyword":"k"}]}`, KindSchema, "missing change_state"},
		{"break point without before state", `{"structure_break_point":{"after_sequence":1,"change_state":{"after":"B"}},"sequences":[{"seq_id":1,"summary":"s","core_message":"c","theme_keyword":"k"}]}`, KindSchema, "change_state.before"},
		{"break point without after state", `{"structure_break_point":{"after_sequence":1,"change_state":{"before":"A"}},"sequences":[{"seq_id":1,"summary":"s","core_message":"c","theme_keyword":"k"}]}`, KindSchema, "change_state.after"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResult(tt.input)
			require.Error(t, err)
			assert.True(t, IsKind(err, tt.kind), "got %v", err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestDecodeReply(t *testing.T) {
	t.Run("fenced reply", func(t *testing.T) {
		r, err := DecodeReply("분석 결과입니다.\n```json\n" + sampleReply + "\n```")
		require.NoError(t, err)
		assert.Equal(t, "예시", r.Metadata.Title)
	})

	t.Run("no JSON", func(t *testing.T) {
		_, err := DecodeReply("죄송합니다. 분석할 수 없습니다.")
		require.Error(t, err)
		assert.True(t, IsKind(err, KindNoJSON))
		assert.ErrorIs(t, err, ErrNoJSON)
	})

	t.Run("truncated reply", func(t *testing.T) {
		_, err := DecodeReply(sampleReply[:40])
		require.Error(t, err)
		assert.True(t, IsKind(err, KindMalformedJSON))
	})
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "service error", KindService.String())
	assert.Equal(t, "no JSON found", KindNoJSON.String())
	assert.Equal(t, "malformed JSON", KindMalformedJSON.String())
	assert.Equal(t, "schema violation", KindSchema.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
