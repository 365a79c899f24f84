package templating

import "testing"

func TestRenderSubstitutesVariables(t *testing.T) {
	out := Render("Hi {{name}}, your code is {{code}}", map[string]string{
		"name": "Ada",
		"code": "PAWS1234",
	})
	want := "Hi Ada, your code is PAWS1234"
	if out != want {
		t.Errorf("Render() = %q, want %q", out, want)
	}
}

func TestRenderLeavesUnmatchedPlaceholders(t *testing.T) {
	out := Render("Hi {{name}}, code {{code}}", map[string]string{"name": "Ada"})
	want := "Hi Ada, code {{code}}"
	if out != want {
		t.Errorf("Render() = %q, want %q", out, want)
	}
}

func TestRenderReplacesEveryOccurrence(t *testing.T) {
	out := Render("{{name}} and {{name}} again", map[string]string{"name": "Rex"})
	if out != "Rex and Rex again" {
		t.Errorf("Render() = %q", out)
	}
}

func TestRenderDoesNotEscapeHTML(t *testing.T) {
	out := Render("<p>{{name}}</p>", map[string]string{"name": "<b>Rex & Co</b>"})
	want := "<p><b>Rex & Co</b></p>"
	if out != want {
		t.Errorf("Render() = %q, want %q (values must pass through unescaped)", out, want)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	vars := map[string]string{"name": "Ada"}
	once := Render("Hello {{name}} {{missing}}", vars)
	twice := Render(once, vars)
	if once != twice {
		t.Errorf("re-rendering changed output: %q vs %q", once, twice)
	}
}

func TestWrap(t *testing.T) {
	if got := Wrap("<head>", "body", "<foot>"); got != "<head>body<foot>" {
		t.Errorf("Wrap() = %q", got)
	}
	if got := Wrap("", "body", ""); got != "body" {
		t.Errorf("Wrap with empty fragments = %q", got)
	}
}

func TestPlaceholder(t *testing.T) {
	if got := Placeholder("tracking_code"); got != "{{tracking_code}}" {
		t.Errorf("Placeholder() = %q", got)
	}
}
