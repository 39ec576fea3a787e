package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vk/ftmpl/internal/source"
)

const promptsDoc = `[import strings]
[from collections import join]

[test_prompt(data, action); unwrap_lines, append_doc]
["Prompt used by the demo."]
Given the data {data}
perform {action}.

[test_prompt_tex(value); latex_tmpl]
\frac{<value>}{2}
[testB()]
`

func parse(t *testing.T, text string) []Block {
	t.Helper()
	blocks, err := Parse(source.New("prompts.ftmpl", text))
	require.NoError(t, err)
	return blocks
}

func TestParse_FullDocument(t *testing.T) {
	// --- Arrange ---
	want := []Block{
		{Kind: KindImport, Signature: Line{Number: 1, Text: "import strings"}},
		{Kind: KindImport, Signature: Line{Number: 2, Text: "from collections import join"}},
		{
			Kind:      KindDefinition,
			Signature: Line{Number: 4, Text: "test_prompt(data, action)"},
			Doc:       Line{Number: 5, Text: "Prompt used by the demo."},
			Body:      Line{Number: 6, Text: "Given the data {data}\nperform {action}.\n"},
			Options:   []string{"unwrap_lines", "append_doc"},
		},
		{
			Kind:      KindDefinition,
			Signature: Line{Number: 9, Text: "test_prompt_tex(value)"},
			Body:      Line{Number: 10, Text: `\frac{<value>}{2}`},
			Options:   []string{"latex_tmpl"},
		},
		{
			Kind:      KindDefinition,
			Signature: Line{Number: 11, Text: "testB()"},
			Options:   []string{},
		},
	}

	// --- Act ---
	blocks := parse(t, promptsDoc)

	// --- Assert ---
	if diff := cmp.Diff(want, blocks); diff != "" {
		t.Fatalf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Idempotent(t *testing.T) {
	// --- Act ---
	first := parse(t, promptsDoc)
	second := parse(t, promptsDoc)

	// --- Assert ---
	require.Equal(t, first, second)
}

func TestParse_BodyKeepsEmbeddedBlankLines(t *testing.T) {
	// --- Act ---
	blocks := parse(t, "[a()]\none\n\n\ntwo\n")

	// --- Assert ---
	require.Len(t, blocks, 1)
	require.Equal(t, Line{Number: 2, Text: "one\n\n\ntwo"}, blocks[0].Body)
}

func TestParse_IndentedBracketIsBody(t *testing.T) {
	// --- Act ---
	blocks := parse(t, "[a()]\n  [not a control line]\n")

	// --- Assert ---
	require.Len(t, blocks, 1)
	require.Equal(t, "  [not a control line]", blocks[0].Body.Text)
}

func TestParse_SignatureMayContainBrackets(t *testing.T) {
	// --- Act ---
	blocks := parse(t, "[pick(items = [1, 2]); unwrap_lines]\n{items}\n")

	// --- Assert ---
	require.Equal(t, "pick(items = [1, 2])", blocks[0].Signature.Text)
	require.Equal(t, []string{"unwrap_lines"}, blocks[0].Options)
}

func TestParse_TrailingWhitespaceAfterBracket(t *testing.T) {
	// --- Act ---
	blocks := parse(t, "[a() ; unwrap_lines ]  \r\n[\"doc\"]\t\nbody\n")

	// --- Assert ---
	require.Equal(t, "a()", blocks[0].Signature.Text)
	require.Equal(t, []string{"unwrap_lines"}, blocks[0].Options)
	require.Equal(t, "doc", blocks[0].Doc.Text)
}

func TestParse_DocLineOnlyDirectlyAfterControlLine(t *testing.T) {
	// --- Act ---
	blocks := parse(t, "[a()]\n\n[\"late doc\"]\n")

	// --- Assert ---
	require.Len(t, blocks, 2)
	require.Empty(t, blocks[0].Doc.Text)
	require.Equal(t, `"late doc"`, blocks[1].Signature.Text)
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		wantLine int
		wantMsg  string
	}{
		{name: "unterminated control line", text: "[a()\nbody\n", wantLine: 1, wantMsg: "unterminated"},
		{name: "unterminated at eof", text: "[a()]\nbody\n[b(", wantLine: 3, wantMsg: "unterminated"},
		{name: "no definitions", text: "[import strings]\n", wantLine: 0, wantMsg: "at least one definition"},
		{name: "empty document", text: "", wantLine: 0, wantMsg: "at least one definition"},
		{name: "bad option", text: "[a(); unwrap-lines]\n", wantLine: 1, wantMsg: "invalid option"},
		{name: "empty option", text: "[a(); unwrap_lines,]\n", wantLine: 1, wantMsg: "invalid option"},
		{name: "import after definition", text: "[a()]\n[import strings]\n", wantLine: 2, wantMsg: "before the first definition"},
		{name: "leading text", text: "hello\n[a()]\n", wantLine: 1, wantMsg: "outside of a block"},
		{name: "empty signature", text: "[; unwrap_lines]\n", wantLine: 1, wantMsg: "empty signature"},
		{name: "bare import", text: "[import]\n[a()]\n", wantLine: 1, wantMsg: "without a module name"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			_, err := Parse(source.New("bad.ftmpl", tc.text))

			// --- Assert ---
			require.Error(t, err)
			var synErr *SyntaxError
			require.True(t, errors.As(err, &synErr), "expected a SyntaxError, got %T", err)
			require.Equal(t, tc.wantLine, synErr.Line)
			require.Contains(t, synErr.Msg, tc.wantMsg)
			require.Len(t, synErr.Diagnostics(), 1)
		})
	}
}

func TestParse_NoDefinitionsWrapsSentinel(t *testing.T) {
	// --- Act ---
	_, err := Parse(source.New("empty.ftmpl", "\n\n"))

	// --- Assert ---
	require.ErrorIs(t, err, ErrNoDefinitions)
}

func TestKind_String(t *testing.T) {
	// --- Assert ---
	require.Equal(t, "import", KindImport.String())
	require.Equal(t, "definition", KindDefinition.String())
	require.Equal(t, "Kind(9)", Kind(9).String())
}
