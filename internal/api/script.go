package api

import (
	"bytes"
	"strconv"
	"strings"
	"text/template"
)

const (
	defaultLongNotes  = "(Insert specific details here)"
	defaultShortNotes = "1. Do this. 2. Then this. 3. Profit."
)

var longScript = template.Must(template.New("long").Parse(`
**Title:** {{.Title}}
**Duration:** {{.Duration}}
**Tone:** {{.Tone}}

**[0:00-0:10] The Hook**
(High energy visual, text overlay)
"I bet you didn't know this about {{.Title}}..."

**[0:10-0:30] The Context (The 'Why')**
"Here's the thing. Most people ignore this detail, but it's actually the most important part because..."

**[0:30-1:00] The Meat (Step-by-Step)**
1. First, you need to...
2. Then, make sure to...
3. Finally, the secret sauce is...
{{.Notes}}

**[1:00-1:30] The Twist / Advanced Tip**
"But wait, there's a hack. If you combine this with..."

**[1:30-{{.Duration}}] Call to Action**
"Save this video so you don't lose it. And follow for part 2!"
`))

var shortScript = template.Must(template.New("short").Parse(`
**Title:** {{.Title}}
**Duration:** {{.Duration}}
**Tone:** {{.Tone}}

**[0:00-0:05] Hook**
(Fast paced visual)
"Stop doing THIS if you want results!"

**[0:05-0:15] The Problem**
"You're wasting time on X, when you should be doing Y."

**[0:15-0:45] The Solution**
{{.Notes}}

**[0:45-{{.Duration}}] CTA**
"Link in bio for the full guide!"
`))

// IsLongForm reports whether a duration asks for the long script layout: anything in minutes,
// or a plain number of seconds above 60.
func IsLongForm(duration string) bool {
	if strings.Contains(duration, "min") {
		return true
	}
	seconds, err := strconv.Atoi(duration)
	return err == nil && seconds > 60
}

// GenerateScript renders a timestamped video script outline
func GenerateScript(q ScriptQuery) (string, error) {
	tmpl := shortScript
	notesDefault := defaultShortNotes
	if IsLongForm(q.Duration) {
		tmpl = longScript
		notesDefault = defaultLongNotes
	}
	if q.Notes == "" {
		q.Notes = notesDefault
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, q); err != nil {
		return "", err
	}
	return buf.String(), nil
}
