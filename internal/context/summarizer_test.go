package ctxengine_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	ctxengine "github.com/flemzord/careerai/internal/context"
	"github.com/flemzord/careerai/pkg/message"
)

func TestSummarize_TooShort(t *testing.T) {
	t.Parallel()

	for n := range 5 {
		if got := ctxengine.Summarize(makeConversation(n)); got != "" {
			t.Errorf("Summarize(%d messages) = %q, want empty", n, got)
		}
	}
}

func TestSummarize_Format(t *testing.T) {
	t.Parallel()

	msgs := []message.Message{
		message.NewUser("Can you help me find a job in data?"),
		message.NewAssistant("Sure, here are some openings about interview prep."),
		message.NewUser("What skills do I need?"),
		message.NewAssistant("Python and SQL."),
		message.NewUser("How do I prepare for the interview?"),
		message.NewUser("Should I update my resume?"),
	}

	got := ctxengine.Summarize(msgs)
	want := "Previous discussion covered: job search, skills, interview prep, resume. " +
		"User asked about: What skills do I need?; How do I prepare for the interview?; Should I update my resume?"
	if got != want {
		t.Errorf("Summarize =\n%q\nwant\n%q", got, want)
	}
}

func TestSummarize_ShortKeywordMatchesWholeWord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query string
		want  bool
	}{
		{"can you check my cv", true},
		{"is my CV ok?", true},
		{"I attached my cv.", true},
		{"cv: two pages", true},
		{"my cvs are outdated", false},
		{"what about cvd research", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			t.Parallel()

			msgs := makeConversation(5)
			msgs = append(msgs, message.NewUser(tt.query))
			got := strings.Contains(ctxengine.Summarize(msgs), "covered: resume")
			if got != tt.want {
				t.Errorf("resume topic for %q = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestSummarize_NoTopic(t *testing.T) {
	t.Parallel()

	msgs := []message.Message{
		message.NewUser("hello"),
		message.NewAssistant("hi"),
		message.NewUser("thanks"),
		message.NewAssistant("welcome"),
		message.NewUser("bye"),
	}

	got := ctxengine.Summarize(msgs)
	want := "Previous discussion covered: general career questions. User asked about: hello; thanks; bye"
	if got != want {
		t.Errorf("Summarize = %q, want %q", got, want)
	}
}

func TestSummarize_TruncatesQueries(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("é", 150)
	msgs := []message.Message{
		message.NewUser(long),
		message.NewAssistant("a"),
		message.NewAssistant("b"),
		message.NewAssistant("c"),
		message.NewAssistant("d"),
	}

	got := ctxengine.Summarize(msgs)
	_, quoted, ok := strings.Cut(got, "User asked about: ")
	if !ok {
		t.Fatalf("Summarize = %q, missing queries", got)
	}
	if n := utf8.RuneCountInString(quoted); n != 100 {
		t.Errorf("quoted query has %d runes, want 100", n)
	}
	if !utf8.ValidString(quoted) {
		t.Error("truncation split a rune")
	}
}

func TestSummarize_AssistantOnly(t *testing.T) {
	t.Parallel()

	msgs := make([]message.Message, 6)
	for i := range msgs {
		msgs[i] = message.NewAssistant("career advice about jobs")
	}
	if got := ctxengine.Summarize(msgs); got != "" {
		t.Errorf("Summarize = %q, want empty without user messages", got)
	}
}

func TestNewSummarizer_CustomTopicsAndConfig(t *testing.T) {
	t.Parallel()

	s := ctxengine.NewSummarizer(
		[]ctxengine.Topic{{Label: "salary", Keywords: []string{"salary", "pay"}}},
		ctxengine.Config{MinSummaryMessages: 2, RecentQueries: 1},
	)

	got := s.Summarize([]message.Message{
		message.NewUser("What is the salary for a data analyst?"),
		message.NewUser("Is the pay better in Pune?"),
	})
	want := "Previous discussion covered: salary. User asked about: Is the pay better in Pune?"
	if got != want {
		t.Errorf("Summarize = %q, want %q", got, want)
	}
}
