package transform

import (
	"regexp"
	"strings"
)

// Built-in option names.
const (
	RemoveCppComments    = "remove_cpp_comments"
	RemovePythonComments = "remove_python_comments"
	RemoveHTMLComments   = "remove_html_comments"
	AppendDoc            = "append_doc"
	UnwrapLines          = "unwrap_lines"
	LatexTmpl            = "latex_tmpl"
)

var builtins = map[string]Func{
	RemoveCppComments:    removeCppComments,
	RemovePythonComments: removePythonComments,
	RemoveHTMLComments:   removeHTMLComments,
	AppendDoc:            appendDoc,
	UnwrapLines:          unwrapLines,
	LatexTmpl:            latexTmpl,
}

// aliases keeps the older option spellings working.
var aliases = map[string]string{
	"cstylecomments": RemoveCppComments,
	"unwraplines":    UnwrapLines,
	"appendtodoc":    AppendDoc,
}

var (
	cppCommentRe    = regexp.MustCompile(`//[^\n]*|/\*[\s\S]*?\*/`)
	pythonCommentRe = regexp.MustCompile(`#[^\n]*`)
	htmlCommentRe   = regexp.MustCompile(`<!--[\s\S]*?-->`)
	lineBreaksRe    = regexp.MustCompile(`\n+`)
)

// stripAll removes matches until none remain, since removing one comment
// can join its neighbours into a new one.
func stripAll(re *regexp.Regexp, s string) string {
	for re.MatchString(s) {
		s = re.ReplaceAllString(s, "")
	}
	return s
}

func removeCppComments(body, doc string) (string, string) {
	return stripAll(cppCommentRe, body), doc
}

func removePythonComments(body, doc string) (string, string) {
	return pythonCommentRe.ReplaceAllString(body, ""), doc
}

func removeHTMLComments(body, doc string) (string, string) {
	return stripAll(htmlCommentRe, body), doc
}

func appendDoc(body, doc string) (string, string) {
	return body, doc + body
}

// unwrapLines turns a single line break into a space and shortens every
// longer run of breaks by one.
func unwrapLines(body, doc string) (string, string) {
	return lineBreaksRe.ReplaceAllStringFunc(body, func(run string) string {
		if len(run) == 1 {
			return " "
		}
		return run[1:]
	}), doc
}

var latexReplacer = strings.NewReplacer("{", "{{", "}", "}}", "<", "{", ">", "}")

// latexTmpl keeps literal braces and turns <expr> into a placeholder.
func latexTmpl(body, doc string) (string, string) {
	return latexReplacer.Replace(body), doc
}
