package crawler

import (
	"slices"
	"strings"
	"testing"
)

func TestLinkRulesNormalize(t *testing.T) {
	t.Parallel()

	rules := DefaultLinkRules()

	tests := []struct {
		name string
		href string
		want string
		keep bool
	}{
		{
			name: "relative article link gets prefix",
			href: "/wiki/Cubism",
			want: "https://en.wikipedia.org/wiki/Cubism",
			keep: true,
		},
		{
			name: "absolute english link kept as is",
			href: "https://en.wikipedia.org/wiki/Paris",
			want: "https://en.wikipedia.org/wiki/Paris",
			keep: true,
		},
		{
			name: "fragment link dropped",
			href: "#cite_note-1",
			keep: false,
		},
		{
			name: "link with fragment dropped",
			href: "/wiki/Cubism#History",
			keep: false,
		},
		{
			name: "other language dropped",
			href: "https://fr.wikipedia.org/wiki/Pablo_Picasso",
			keep: false,
		},
		{
			name: "empty href becomes prefix",
			href: "",
			want: "https://en.wikipedia.org",
			keep: true,
		},
		{
			name: "http substring anywhere counts as absolute",
			href: "/wiki/http_protocol",
			want: "",
			keep: false,
		},
		{
			name: "external link containing en. kept",
			href: "https://screen.example.org/picasso",
			want: "https://screen.example.org/picasso",
			keep: true,
		},
		{
			name: "external link without en. dropped",
			href: "https://www.britannica.com/topic/Guernica-painting",
			want: "",
			keep: false,
		},
		{
			name: "protocol relative link gets prefix",
			href: "//en.wikipedia.org/wiki/Spain",
			want: "https://en.wikipedia.org//en.wikipedia.org/wiki/Spain",
			keep: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, keep := rules.Normalize(tt.href)
			if keep != tt.keep {
				t.Fatalf("Normalize(%q) keep = %v, want %v", tt.href, keep, tt.keep)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}

func TestLinkRulesEmptyFilterKeepsEverything(t *testing.T) {
	t.Parallel()

	rules := LinkRules{Prefix: "http://127.0.0.1:8080"}
	got, keep := rules.Normalize("/wiki/A")
	if !keep {
		t.Fatal("expected link to be kept")
	}
	if got != "http://127.0.0.1:8080/wiki/A" {
		t.Errorf("got %q", got)
	}
}

func TestParser(t *testing.T) {
	t.Parallel()

	t.Run("extracts heading text", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title>Ignored</title></head><body>
			<h1 id="firstHeading" class="firstHeading"><span>Pablo Picasso</span></h1>
		</body></html>`

		result, err := NewParser(DefaultLinkRules(), DefaultTitleElementID).Parse(strings.NewReader(html), false)
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if !result.HasTitle {
			t.Fatal("expected heading to be found")
		}
		if result.Title != "Pablo Picasso" {
			t.Errorf("expected title 'Pablo Picasso', got %q", result.Title)
		}
	})

	t.Run("missing heading", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title>Only a title</title></head><body><p>Text.</p></body></html>`

		result, err := NewParser(DefaultLinkRules(), DefaultTitleElementID).Parse(strings.NewReader(html), false)
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if result.HasTitle {
			t.Errorf("expected no heading, got %q", result.Title)
		}
	})

	t.Run("concatenates paragraphs without separator", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<div>Not a paragraph.</div>
			<p>First <b>bold</b> part.</p>
			<p>Second part.</p>
		</body></html>`

		result, err := NewParser(DefaultLinkRules(), DefaultTitleElementID).Parse(strings.NewReader(html), false)
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		want := "First bold part.Second part."
		if result.Body != want {
			t.Errorf("expected body %q, got %q", want, result.Body)
		}
	})

	t.Run("links only when requested", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><a href="/wiki/Cubism">Cubism</a></body></html>`

		result, err := NewParser(DefaultLinkRules(), DefaultTitleElementID).Parse(strings.NewReader(html), false)
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if result.Links != nil {
			t.Errorf("expected no links, got %v", result.Links)
		}
	})

	t.Run("extracts links in document order with duplicates", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="/wiki/Cubism">Cubism</a>
			<a name="anchor-without-href">skip</a>
			<a href="#cite_note-3">[3]</a>
			<a href="https://de.wikipedia.org/wiki/Pablo_Picasso">Deutsch</a>
			<a href="/wiki/File:Picasso.jpg">image</a>
			<a href="/wiki/Cubism">Cubism again</a>
		</body></html>`

		result, err := NewParser(DefaultLinkRules(), DefaultTitleElementID).Parse(strings.NewReader(html), true)
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		want := []string{
			"https://en.wikipedia.org/wiki/Cubism",
			"https://en.wikipedia.org/wiki/File:Picasso.jpg",
			"https://en.wikipedia.org/wiki/Cubism",
		}
		if !slices.Equal(result.Links, want) {
			t.Errorf("expected links %v, got %v", want, result.Links)
		}
	})

	t.Run("custom heading id", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><h1 id="page-title">Custom</h1><h1 id="firstHeading">Default</h1></body></html>`

		result, err := NewParser(DefaultLinkRules(), "page-title").Parse(strings.NewReader(html), false)
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if result.Title != "Custom" {
			t.Errorf("expected title 'Custom', got %q", result.Title)
		}
	})

	t.Run("malformed html", func(t *testing.T) {
		t.Parallel()

		html := `<p>Unclosed paragraph one<p>Unclosed paragraph two`

		result, err := NewParser(DefaultLinkRules(), DefaultTitleElementID).Parse(strings.NewReader(html), true)
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if result.Body != "Unclosed paragraph oneUnclosed paragraph two" {
			t.Errorf("unexpected body %q", result.Body)
		}
	})
}
