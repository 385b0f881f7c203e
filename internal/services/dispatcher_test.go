package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"pigbot/internal/models"
	"pigbot/internal/services"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyMention(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		tagged []string
		want   services.Command
	}{
		{
			name:   "analysis with target",
			text:   "#pigid check this guy",
			tagged: []string{"pigbot", "elonmusk"},
			want:   services.Command{Kind: services.CommandTickerAnalysis, Target: "elonmusk"},
		},
		{
			name:   "analysis tag is case insensitive",
			text:   "#PigID check this guy",
			tagged: []string{"elonmusk"},
			want:   services.Command{Kind: services.CommandTickerAnalysis, Target: "elonmusk"},
		},
		{
			name:   "analysis without usable target",
			text:   "#pigid who",
			tagged: []string{"pigbot", "alice"},
			want:   services.Command{Kind: services.CommandMissingTarget},
		},
		{
			name: "analysis with no tags at all",
			text: "#pigid",
			want: services.Command{Kind: services.CommandMissingTarget},
		},
		{
			name:   "analysis wins over inventory",
			text:   "#pigid and #pigme too",
			tagged: []string{"bob"},
			want:   services.Command{Kind: services.CommandTickerAnalysis, Target: "bob"},
		},
		{
			name: "inventory query",
			text: "hey #PIGME",
			want: services.Command{Kind: services.CommandInventoryQuery},
		},
		{
			name: "anything else",
			text: "what do you think about dogs",
			want: services.Command{Kind: services.CommandDefaultReply},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mention := &models.Mention{
				ID:              "m1",
				Text:            tt.text,
				AuthorUsername:  "alice",
				TaggedUsernames: tt.tagged,
			}
			assert.Equal(t, tt.want, services.ClassifyMention(mention, "pigbot"))
		})
	}
}

func TestDispatchHandlesMentionAtMostOnce(t *testing.T) {
	t.Parallel()

	injector, fx := newTestContainer(t)
	dispatcher, err := do.Invoke[*services.ServiceDispatcher](injector)
	require.NoError(t, err)

	fx.platform.mentions = []models.Mention{{
		ID:             "m1",
		Text:           "hello pig",
		AuthorID:       "u1",
		AuthorUsername: "alice",
		CreatedAt:      time.Now(),
	}}

	ctx := context.Background()
	require.NoError(t, dispatcher.RunDispatchCycle(ctx))
	require.NoError(t, dispatcher.RunDispatchCycle(ctx))

	assert.Equal(t, 1, fx.platform.replyCount())
}

func TestDispatchDefaultReplyAwardsItem(t *testing.T) {
	t.Parallel()

	injector, fx := newTestContainer(t)
	dispatcher, err := do.Invoke[*services.ServiceDispatcher](injector)
	require.NoError(t, err)
	reward, err := do.Invoke[*services.ServiceReward](injector)
	require.NoError(t, err)

	fx.platform.mentions = []models.Mention{{
		ID:             "m1",
		Text:           "gm",
		AuthorID:       "u1",
		AuthorUsername: "alice",
		CreatedAt:      time.Now(),
	}}

	ctx := context.Background()
	require.NoError(t, dispatcher.RunDispatchCycle(ctx))

	reply := fx.platform.lastReply()
	assert.Equal(t, "m1", reply.InReplyTo)
	assert.Equal(t, "@alice, oink", reply.Text)

	entries, err := reward.PeekInventory(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, totalQuantity(entries))
}

func TestDispatchFailedMentionIsRetriedNextCycle(t *testing.T) {
	t.Parallel()

	injector, fx := newTestContainer(t)
	dispatcher, err := do.Invoke[*services.ServiceDispatcher](injector)
	require.NoError(t, err)

	fx.platform.mentions = []models.Mention{
		{ID: "m1", Text: "gm", AuthorID: "u1", AuthorUsername: "alice", CreatedAt: time.Now()},
		{ID: "m2", Text: "gm", AuthorID: "u2", AuthorUsername: "bob", CreatedAt: time.Now()},
	}
	fx.platform.replyErrs["m1"] = errors.New("boom")

	ctx := context.Background()

	// m1 fails and stays unprocessed, m2 goes through
	require.NoError(t, dispatcher.RunDispatchCycle(ctx))
	assert.Equal(t, 1, fx.platform.replyCount())
	assert.Equal(t, "m2", fx.platform.lastReply().InReplyTo)

	delete(fx.platform.replyErrs, "m1")

	// next cycle picks m1 up without touching m2 again
	require.NoError(t, dispatcher.RunDispatchCycle(ctx))
	assert.Equal(t, 2, fx.platform.replyCount())
	assert.Equal(t, "m1", fx.platform.lastReply().InReplyTo)
}

func TestDispatchMalformedMentionSkipped(t *testing.T) {
	t.Parallel()

	injector, fx := newTestContainer(t)
	dispatcher, err := do.Invoke[*services.ServiceDispatcher](injector)
	require.NoError(t, err)

	fx.platform.mentions = []models.Mention{
		{ID: "", Text: "ghost", AuthorUsername: "alice"},
		{ID: "m2", Text: "gm", AuthorID: "u2", AuthorUsername: "bob", CreatedAt: time.Now()},
	}

	require.NoError(t, dispatcher.RunDispatchCycle(context.Background()))
	assert.Equal(t, 1, fx.platform.replyCount())
	assert.Equal(t, "m2", fx.platform.lastReply().InReplyTo)
}

func TestDispatchMissingAnalysisTarget(t *testing.T) {
	t.Parallel()

	injector, fx := newTestContainer(t)
	dispatcher, err := do.Invoke[*services.ServiceDispatcher](injector)
	require.NoError(t, err)

	fx.platform.mentions = []models.Mention{{
		ID:             "m1",
		Text:           "#pigid",
		AuthorID:       "u1",
		AuthorUsername: "alice",
		CreatedAt:      time.Now(),
	}}

	require.NoError(t, dispatcher.RunDispatchCycle(context.Background()))
	require.Equal(t, 1, fx.platform.replyCount())
	assert.Contains(t, fx.platform.lastReply().Text, "please tag a user after #pigid")
}

func TestDispatchAnalysisFailureStillReplies(t *testing.T) {
	t.Parallel()

	injector, fx := newTestContainer(t)
	dispatcher, err := do.Invoke[*services.ServiceDispatcher](injector)
	require.NoError(t, err)

	fx.platform.mentions = []models.Mention{{
		ID:              "m1",
		Text:            "#pigid look at him",
		AuthorID:        "u1",
		AuthorUsername:  "alice",
		TaggedUsernames: []string{"victim"},
		CreatedAt:       time.Now(),
	}}
	// target resolves, market resolves, but the target has no posts; the
	// analyzer still produces a zero-score report rather than an error
	require.NoError(t, dispatcher.RunDispatchCycle(context.Background()))
	require.Equal(t, 1, fx.platform.replyCount())
	assert.Contains(t, fx.platform.lastReply().Text, "Consistency score: 0.00")
}

func TestDispatchInventoryQueryRepliesWithStatus(t *testing.T) {
	t.Parallel()

	injector, fx := newTestContainer(t)
	dispatcher, err := do.Invoke[*services.ServiceDispatcher](injector)
	require.NoError(t, err)
	reward, err := do.Invoke[*services.ServiceReward](injector)
	require.NoError(t, err)

	ctx := context.Background()
	reward.AwardItem(ctx, "alice", "Bacon")

	fx.platform.mentions = []models.Mention{{
		ID:             "m1",
		Text:           "#pigme",
		AuthorID:       "u1",
		AuthorUsername: "alice",
		CreatedAt:      time.Now(),
	}}

	require.NoError(t, dispatcher.RunDispatchCycle(ctx))
	require.Equal(t, 1, fx.platform.replyCount())
	assert.Equal(t, "@alice, your inventory: Bacon x1.", fx.platform.lastReply().Text)
}

func TestDispatchFallbackReplyStillMarksProcessed(t *testing.T) {
	t.Parallel()

	injector, fx := newTestContainer(t)
	dispatcher, err := do.Invoke[*services.ServiceDispatcher](injector)
	require.NoError(t, err)

	fx.persona.text = services.PERSONA_FALLBACK
	fx.platform.mentions = []models.Mention{{
		ID:             "m1",
		Text:           "gm",
		AuthorID:       "u1",
		AuthorUsername: "alice",
		CreatedAt:      time.Now(),
	}}

	ctx := context.Background()
	require.NoError(t, dispatcher.RunDispatchCycle(ctx))
	require.Equal(t, 1, fx.platform.replyCount())
	assert.Equal(t, "@alice, "+services.PERSONA_FALLBACK, fx.platform.lastReply().Text)

	// a fallback reply still counts as handled
	require.NoError(t, dispatcher.RunDispatchCycle(ctx))
	assert.Equal(t, 1, fx.platform.replyCount())
}
