package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBlockHTML(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want bool
	}{
		{"paragraph", "<p>A new shop opened today.</p>", true},
		{"heading and text", "<h2>Shop</h2>opened", true},
		{"plain text", "A new shop opened today.", false},
		{"inline only", "A <strong>new</strong> shop", false},
		{"comparison", "5 < 6 and 7 > 3", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsBlockHTML(tc.text))
		})
	}
}

func TestEnsureHTML(t *testing.T) {
	t.Parallel()

	m := NewMarkdown()

	cases := []struct {
		name string
		text string
		want string
	}{
		{"keeps html", "  <p>KARACHI, Pakistan - A shop opened.</p>\n", "<p>KARACHI, Pakistan - A shop opened.</p>"},
		{"wraps single paragraph", "A shop opened.", "<p>A shop opened.</p>"},
		{"wraps paragraphs", "A shop opened.\n\nThe owner said sales were strong.", "<p>A shop opened.</p>\n<p>The owner said sales were strong.</p>"},
		{"line breaks", "First line\nsecond line", "<p>First line<br />\nsecond line</p>"},
		{"indented paragraph", "KARACHI, Pakistan - A shop opened.\n\n    The owner said sales were strong.", "<p>KARACHI, Pakistan - A shop opened.</p>\n<p>The owner said sales were strong.</p>"},
		{"numbered line", "1. Daraz said sales rose.", "<p>1. Daraz said sales rose.</p>"},
		{"dashes under a line", "Prices\n---\nstart at PKR 500.", "<p>Prices<br />\n---<br />\nstart at PKR 500.</p>"},
		{"crlf and extra blank lines", "A shop opened.\r\n\r\n\r\nSales rose.", "<p>A shop opened.</p>\n<p>Sales rose.</p>"},
		{"empty", "   ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := m.EnsureHTML(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	m := NewMarkdown()
	ctx := context.Background()

	body := "<p>A new shop opened today in the city.</p>"
	got, err := m.Render(ctx, body)
	require.NoError(t, err)
	assert.Equal(t, body, got, "stored HTML renders byte-identical")

	got, err = m.Render(ctx, "# Shop Opens\n\nA new shop opened.")
	require.NoError(t, err)
	assert.Equal(t, "<h1>Shop Opens</h1>\n<p>A new shop opened.</p>\n", got)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = m.Render(cancelled, body)
	assert.ErrorIs(t, err, context.Canceled)
}
