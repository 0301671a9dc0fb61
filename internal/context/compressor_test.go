package ctxengine_test

import (
	"slices"
	"strings"
	"testing"

	ctxengine "github.com/flemzord/careerai/internal/context"
	"github.com/flemzord/careerai/pkg/message"
)

func TestCompress_Boundary(t *testing.T) {
	t.Parallel()

	all := makeConversation(15)
	cc := ctxengine.Compress(all, 10)

	if len(cc.RecentMessages) != 10 {
		t.Fatalf("RecentMessages = %d, want 10", len(cc.RecentMessages))
	}
	for i, m := range cc.RecentMessages {
		if m.ID != all[5+i].ID {
			t.Errorf("RecentMessages[%d] = %q, want %q", i, m.Content, all[5+i].Content)
		}
	}

	if cc.MemorySummary == "" {
		t.Fatal("MemorySummary is empty")
	}
	if cc.MemorySummary != ctxengine.Summarize(all[:5]) {
		t.Errorf("MemorySummary = %q, want summary of the first 5", cc.MemorySummary)
	}
	for _, m := range all[5:] {
		if m.IsUser() && strings.Contains(cc.MemorySummary, m.Content) {
			t.Errorf("MemorySummary quotes recent message %q", m.Content)
		}
	}
}

func TestCompress_ShortHistory(t *testing.T) {
	t.Parallel()

	all := makeConversation(4)
	cc := ctxengine.Compress(all, 10)
	if len(cc.RecentMessages) != 4 {
		t.Errorf("RecentMessages = %d, want 4", len(cc.RecentMessages))
	}
	if cc.MemorySummary != "" {
		t.Errorf("MemorySummary = %q, want empty", cc.MemorySummary)
	}
}

func TestCompress_DefaultWindow(t *testing.T) {
	t.Parallel()

	all := makeConversation(25)
	for _, w := range []int{0, -1} {
		cc := ctxengine.Compress(all, w)
		if len(cc.RecentMessages) != ctxengine.DefaultWindow {
			t.Errorf("Compress(window=%d): %d recent, want %d", w, len(cc.RecentMessages), ctxengine.DefaultWindow)
		}
	}
}

func TestCompress_DoesNotAlias(t *testing.T) {
	t.Parallel()

	all := makeConversation(12)
	original := slices.Clone(all)

	cc := ctxengine.Compress(all, 10)
	cc.RecentMessages[0].Content = "mutated"
	_ = append(cc.RecentMessages[:1], message.NewUser("appended"))

	for i := range all {
		if all[i] != original[i] {
			t.Fatalf("input mutated at %d: %+v", i, all[i])
		}
	}
}

func TestCompress_EntitiesFromFullHistory(t *testing.T) {
	t.Parallel()

	all := append([]message.Message{message.NewUser("I know Python and want to work at Google")}, makeConversation(12)...)
	cc := ctxengine.Compress(all, 10)

	if !slices.Contains(cc.RelevantEntities.Skills, "python") {
		t.Errorf("Skills = %v, want python from the older messages", cc.RelevantEntities.Skills)
	}
	if !slices.Contains(cc.RelevantEntities.Companies, "google") {
		t.Errorf("Companies = %v, want google", cc.RelevantEntities.Companies)
	}
}

func TestCompressor_ConfiguredWindow(t *testing.T) {
	t.Parallel()

	c := ctxengine.NewCompressor(nil, nil, ctxengine.Config{Window: 4})
	cc := c.Compress(makeConversation(9))
	if len(cc.RecentMessages) != 4 {
		t.Errorf("RecentMessages = %d, want 4", len(cc.RecentMessages))
	}
	if cc.MemorySummary == "" {
		t.Error("MemorySummary is empty for 5 older messages")
	}
}
