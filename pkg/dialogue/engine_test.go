package dialogue

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/conditionals"
	"github.com/jwebster45206/npc-engine/pkg/dice"
	"github.com/jwebster45206/npc-engine/pkg/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	items     map[string]int
	abilities map[string]int
}

func (p *fakePlayer) ItemCount(item string) int       { return p.items[item] }
func (p *fakePlayer) AbilityScore(ability string) int { return p.abilities[ability] }

type fakeQuests struct {
	available map[string]bool
	accepted  []string
	err       error
}

func (q *fakeQuests) QuestAvailable(questID string) bool { return q.available[questID] }

func (q *fakeQuests) AcceptQuest(_ context.Context, npcID, questID string) error {
	q.accepted = append(q.accepted, npcID+"/"+questID)
	return q.err
}

var mira = &actor.NPC{ID: "mira", Name: "Mira", Occupation: "merchant"}

func miraGraph() []Node {
	return []Node{
		{
			ID:   "intro",
			Text: "Welcome, stranger.",
			Tags: []string{TagIntroduction},
			Responses: []Response{
				{ID: "who", Text: "Who are you?", NextNodeID: "about"},
				{ID: "bye", Text: "Farewell.", IsGoodbye: true},
			},
		},
		{ID: "greet", Text: "Back again?", Tags: []string{TagGreeting}, Responses: []Response{
			{ID: "ask", Text: "Tell me about your wares.", NextNodeID: "about"},
			{ID: "bye", Text: "Farewell.", IsGoodbye: true},
		}},
		{ID: "greet_friendly", Text: "My friend!", Tags: []string{TagGreeting, TagFriendly}},
		{ID: "greet_hostile", Text: "You again.", Tags: []string{TagGreeting, TagHostile}},
		{
			ID:           "about",
			Text:         "I sell rope. Could you fetch some from the docks?",
			RevealsTopic: "rope-trade",
			QuestID:      "fetch-rope",
			Responses: []Response{
				{ID: "accept", Text: "I'll do it.", IsQuestAccept: true, NextNodeID: "thanks"},
				{ID: "refuse", Text: "Not today.", IsQuestRefuse: true, NextNodeID: "nowhere"},
				{ID: "compliment", Text: "Fine rope indeed.", RelationshipEffect: 3, NextNodeID: "greet"},
				{ID: "rope", Text: "I brought two coils.", NextNodeID: "thanks", Requirements: []conditionals.Requirement{
					{Type: conditionals.RequireItem, Target: "rope", Value: 2},
				}},
				{ID: "quest_gated", Text: "About that other job.", NextNodeID: "thanks", Requirements: []conditionals.Requirement{
					{Type: conditionals.RequireQuest, Target: "other-job"},
				}},
			},
		},
		{ID: "thanks", Text: "Much obliged."},
	}
}

func sageGraph() []Node {
	return []Node{
		{
			ID:   "persuade",
			Text: "Why should I tell you anything?",
			SkillCheck: &SkillCheck{
				Ability:               "charisma",
				DC:                    15,
				SuccessNodeID:         "yes",
				FailureNodeID:         "no",
				CriticalSuccessNodeID: "crit",
			},
			Responses: []Response{
				{ID: "plead", Text: "Please, it matters.", SkillCheckModifier: 2},
			},
		},
		{ID: "yes", Text: "Very well."},
		{ID: "no", Text: "Begone."},
		{ID: "crit", Text: "You remind me of myself."},
	}
}

func newEngine(t *testing.T, player Player, rng dice.Source) (*Engine, *memory.Store) {
	t.Helper()
	mem := memory.NewStore()
	e := NewEngine(mem, player, rng, nil)
	require.NoError(t, e.RegisterGraph("mira", miraGraph()))
	require.NoError(t, e.RegisterGraph("sage", sageGraph()))
	return e, mem
}

func responseIDs(rs []Response) []string {
	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestStartConversation_IntroductionOnFirstMeeting(t *testing.T) {
	for _, rel := range []int{-10, 0, 10} {
		e, mem := newEngine(t, &fakePlayer{}, dice.NewScripted())
		mem.AdjustRelationship("mira", rel)

		r, err := e.StartConversation(mira)
		require.NoError(t, err)
		assert.Equal(t, "intro", r.NodeID, "relationship %d", rel)
		assert.Equal(t, "Welcome, stranger.", r.Text)
		assert.False(t, r.ConversationEnded)
		assert.Equal(t, 0, r.RelationshipChange)
		assert.Equal(t, 1, mem.Get("mira").InteractionCount)
	}
}

func TestStartConversation_GreetingByMood(t *testing.T) {
	tests := []struct {
		rel  int
		want string
	}{
		{10, "greet_friendly"},
		{6, "greet_friendly"},
		{5, "greet"},
		{-5, "greet"},
		{-6, "greet_hostile"},
	}
	for _, tt := range tests {
		e, mem := newEngine(t, &fakePlayer{}, dice.NewScripted())
		mem.GetOrCreate("mira").InteractionCount = 3
		mem.GetOrCreate("mira").Relationship = tt.rel

		r, err := e.StartConversation(mira)
		require.NoError(t, err)
		assert.Equal(t, tt.want, r.NodeID, "relationship %d", tt.rel)
	}
}

func TestStartConversation_FallbackNodes(t *testing.T) {
	e, _ := newEngine(t, &fakePlayer{}, dice.NewScripted())

	r, err := e.StartConversation(&actor.NPC{ID: "sage"})
	require.NoError(t, err)
	assert.Equal(t, "persuade", r.NodeID)
	require.NotNil(t, r.SkillCheck)
	assert.Equal(t, "charisma", r.SkillCheck.Ability)

	r, err = e.StartConversation(&actor.NPC{ID: "stranger"})
	require.NoError(t, err)
	assert.Equal(t, GenericGreetingID, r.NodeID)
	assert.Equal(t, []string{"goodbye"}, responseIDs(r.AvailableResponses))

	r, err = e.SelectResponse(context.Background(), "stranger", "goodbye")
	require.NoError(t, err)
	assert.True(t, r.ConversationEnded)

	_, err = e.StartConversation(&actor.NPC{})
	assert.ErrorIs(t, err, ErrInvalidNPC)
}

func TestSkillCheck_SuccessNotCritical(t *testing.T) {
	player := &fakePlayer{abilities: map[string]int{"charisma": 16}}
	e, _ := newEngine(t, player, dice.NewScripted().PushD20(15))

	_, err := e.StartConversation(&actor.NPC{ID: "sage"})
	require.NoError(t, err)

	r, err := e.SelectResponse(context.Background(), "sage", "plead")
	require.NoError(t, err)
	require.NotNil(t, r.SkillCheckResult)
	assert.Equal(t, SkillCheckResult{
		Ability:  "charisma",
		Roll:     15,
		Modifier: 5,
		Total:    20,
		DC:       15,
		Success:  true,
		Critical: false,
	}, *r.SkillCheckResult)
	assert.Equal(t, "yes", r.NodeID)
	assert.Equal(t, "Very well.", r.Text)
}

func oracleGraph(dc int) []Node {
	return []Node{
		{
			ID:   "riddle",
			Text: "Answer me this.",
			SkillCheck: &SkillCheck{
				Ability:               "charisma",
				DC:                    dc,
				SuccessNodeID:         "yes",
				FailureNodeID:         "no",
				CriticalSuccessNodeID: "crit",
				CriticalFailureNodeID: "botch",
			},
			Responses: []Response{
				{ID: "plead", Text: "Please, it matters.", SkillCheckModifier: 2},
			},
		},
		{ID: "yes", Text: "Correct."},
		{ID: "no", Text: "Wrong."},
		{ID: "crit", Text: "Brilliant!"},
		{ID: "botch", Text: "You embarrass yourself."},
	}
}

func TestSkillCheck_Naturals(t *testing.T) {
	tests := []struct {
		name     string
		charisma int
		dc       int
		roll     int
		want     string
		success  bool
	}{
		{"natural 20 meeting DC is a critical success", 10, 15, 20, "crit", true},
		{"natural 1 missing DC is a critical failure", 10, 15, 1, "botch", false},
		{"natural 1 meeting DC is a critical success", 20, 5, 1, "crit", true},
		{"natural 20 missing DC is a critical failure", 10, 25, 20, "botch", false},
		{"plain failure", 10, 15, 12, "no", false},
		{"exact DC succeeds", 10, 15, 13, "yes", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := &fakePlayer{abilities: map[string]int{"charisma": tt.charisma}}
			e, _ := newEngine(t, player, dice.NewScripted().PushD20(tt.roll))
			require.NoError(t, e.RegisterGraph("oracle", oracleGraph(tt.dc)))
			_, err := e.StartConversation(&actor.NPC{ID: "oracle"})
			require.NoError(t, err)

			r, err := e.SelectResponse(context.Background(), "oracle", "plead")
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.NodeID)
			assert.Equal(t, tt.success, r.SkillCheckResult.Success)
			assert.True(t, r.SkillCheckResult.Critical == (tt.roll == 1 || tt.roll == 20))

			conv, ok := e.ActiveConversation("oracle")
			require.True(t, ok)
			assert.Len(t, conv.SkillChecksAttempted, 1)
		})
	}
}

func TestSkillCheck_CriticalFallsBackToPlainNode(t *testing.T) {
	// sage has no critical failure node
	player := &fakePlayer{abilities: map[string]int{"charisma": 10}}
	e, _ := newEngine(t, player, dice.NewScripted().PushD20(1))
	_, err := e.StartConversation(&actor.NPC{ID: "sage"})
	require.NoError(t, err)

	r, err := e.SelectResponse(context.Background(), "sage", "plead")
	require.NoError(t, err)
	assert.Equal(t, "no", r.NodeID)
	assert.False(t, r.SkillCheckResult.Success)
	assert.True(t, r.SkillCheckResult.Critical)
}

func TestRequirementGating_Rope(t *testing.T) {
	player := &fakePlayer{items: map[string]int{"rope": 1}}
	e, _ := newEngine(t, player, dice.NewScripted())
	_, err := e.StartConversation(mira)
	require.NoError(t, err)

	r, err := e.SelectResponse(context.Background(), "mira", "who")
	require.NoError(t, err)
	assert.NotContains(t, responseIDs(r.AvailableResponses), "rope")

	_, err = e.SelectResponse(context.Background(), "mira", "rope")
	assert.ErrorIs(t, err, ErrResponseUnavailable)

	player.items["rope"] = 2
	avail := e.FilterAvailableResponses("mira", miraGraph()[4].Responses)
	assert.Contains(t, responseIDs(avail), "rope")

	r, err = e.SelectResponse(context.Background(), "mira", "rope")
	require.NoError(t, err)
	assert.Equal(t, "thanks", r.NodeID)
}

func TestRequirementGating_QuestManager(t *testing.T) {
	e, _ := newEngine(t, &fakePlayer{}, dice.NewScripted())
	about := miraGraph()[4].Responses

	// without a quest manager quest requirements pass
	assert.Contains(t, responseIDs(e.FilterAvailableResponses("mira", about)), "quest_gated")

	qm := &fakeQuests{available: map[string]bool{}}
	e.WithQuestManager(qm)
	assert.NotContains(t, responseIDs(e.FilterAvailableResponses("mira", about)), "quest_gated")
	qm.available["other-job"] = true
	assert.Contains(t, responseIDs(e.FilterAvailableResponses("mira", about)), "quest_gated")
}

func TestSelectResponse_TopicsAndRelationship(t *testing.T) {
	e, mem := newEngine(t, &fakePlayer{}, dice.NewScripted())
	e.WithClock(func() int64 { return 42 })
	_, err := e.StartConversation(mira)
	require.NoError(t, err)

	_, err = e.SelectResponse(context.Background(), "mira", "who")
	require.NoError(t, err)
	assert.Equal(t, 1, mem.TopicFamiliarity("mira", "rope-trade"))

	r, err := e.SelectResponse(context.Background(), "mira", "compliment")
	require.NoError(t, err)
	assert.Equal(t, "greet", r.NodeID)
	assert.Equal(t, 3, r.RelationshipChange)
	assert.Equal(t, 3, mem.Get("mira").Relationship)
	require.Len(t, mem.Get("mira").Events, 1)
	assert.Equal(t, 3, mem.Get("mira").Events[0].Effect)
	assert.Equal(t, int64(42), mem.Get("mira").Events[0].Time)

	conv, ok := e.ActiveConversation("mira")
	require.True(t, ok)
	assert.Equal(t, []string{"rope-trade"}, conv.TopicsDiscovered)
	assert.Equal(t, StatusActive, conv.Status)
	require.Len(t, conv.History, 3)
	assert.Equal(t, "who", conv.History[0].ResponseID)
	assert.Equal(t, "compliment", conv.History[1].ResponseID)
	assert.Equal(t, "", conv.History[2].ResponseID)
}

func TestSelectResponse_QuestAccept(t *testing.T) {
	qm := &fakeQuests{}
	e, mem := newEngine(t, &fakePlayer{}, dice.NewScripted())
	e.WithQuestManager(qm)
	_, _ = e.StartConversation(mira)
	_, _ = e.SelectResponse(context.Background(), "mira", "who")

	r, err := e.SelectResponse(context.Background(), "mira", "accept")
	require.NoError(t, err)
	assert.True(t, r.QuestAccepted)
	assert.Equal(t, "fetch-rope", r.QuestID)
	assert.Equal(t, "thanks", r.NodeID)
	assert.Equal(t, []string{"fetch-rope"}, mem.Get("mira").QuestsGiven)
	assert.Equal(t, []string{"mira/fetch-rope"}, qm.accepted)

	// the final node has no responses but the conversation stays open
	assert.Empty(t, r.AvailableResponses)
	assert.False(t, r.ConversationEnded)
}

func TestSelectResponse_QuestManagerErrorIsNotFatal(t *testing.T) {
	e, mem := newEngine(t, &fakePlayer{}, dice.NewScripted())
	e.WithQuestManager(&fakeQuests{err: errors.New("quest log full")})
	_, _ = e.StartConversation(mira)
	_, _ = e.SelectResponse(context.Background(), "mira", "who")

	r, err := e.SelectResponse(context.Background(), "mira", "accept")
	require.NoError(t, err)
	assert.True(t, r.QuestAccepted)
	assert.Equal(t, []string{"fetch-rope"}, mem.Get("mira").QuestsGiven)
}

func TestSelectResponse_MissingNextNodeEnds(t *testing.T) {
	e, mem := newEngine(t, &fakePlayer{}, dice.NewScripted())
	_, _ = e.StartConversation(mira)
	_, _ = e.SelectResponse(context.Background(), "mira", "who")

	r, err := e.SelectResponse(context.Background(), "mira", "refuse")
	require.NoError(t, err)
	assert.True(t, r.ConversationEnded)
	assert.True(t, r.QuestRefused)
	assert.Equal(t, "fetch-rope", r.QuestID)
	assert.Empty(t, mem.Get("mira").QuestsGiven)

	_, ok := e.ActiveConversation("mira")
	assert.False(t, ok)
	assert.Len(t, mem.Get("mira").ConversationHistory, 2)
}

func TestSelectResponse_Goodbye(t *testing.T) {
	e, mem := newEngine(t, &fakePlayer{}, dice.NewScripted())
	e.WithClock(func() int64 { return 900 })
	_, _ = e.StartConversation(mira)

	r, err := e.SelectResponse(context.Background(), "mira", "bye")
	require.NoError(t, err)
	assert.True(t, r.ConversationEnded)
	assert.NotNil(t, r.AvailableResponses)
	assert.Empty(t, r.AvailableResponses)

	m := mem.Get("mira")
	require.Len(t, m.ConversationHistory, 1)
	assert.Equal(t, "bye", m.ConversationHistory[0].ResponseID)
	assert.Equal(t, int64(900), m.LastConversation)

	// finalize is idempotent
	assert.False(t, e.EndConversation("mira"))
	assert.Len(t, mem.Get("mira").ConversationHistory, 1)
}

func TestSelectResponse_Errors(t *testing.T) {
	e, _ := newEngine(t, &fakePlayer{}, dice.NewScripted())

	_, err := e.SelectResponse(context.Background(), "mira", "who")
	assert.ErrorIs(t, err, ErrNoActiveConversation)

	_, _ = e.StartConversation(mira)
	_, err = e.SelectResponse(context.Background(), "mira", "sing")
	assert.ErrorIs(t, err, ErrResponseNotFound)

	// the graph changes under an open conversation
	require.NoError(t, e.RegisterGraph("mira", []Node{{ID: "other"}}))
	_, err = e.SelectResponse(context.Background(), "mira", "who")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestEndConversation(t *testing.T) {
	e, mem := newEngine(t, &fakePlayer{}, dice.NewScripted())
	assert.False(t, e.EndConversation("mira"))

	_, _ = e.StartConversation(mira)
	assert.Equal(t, []string{"mira"}, e.ActiveConversations())
	assert.True(t, e.EndConversation("mira"))
	assert.False(t, e.EndConversation("mira"))
	assert.Empty(t, e.ActiveConversations())
	assert.Len(t, mem.Get("mira").ConversationHistory, 1)
}

func TestStartConversation_InterruptsPrevious(t *testing.T) {
	e, mem := newEngine(t, &fakePlayer{}, dice.NewScripted())
	_, _ = e.StartConversation(mira)
	_, _ = e.SelectResponse(context.Background(), "mira", "who")

	r, err := e.StartConversation(mira)
	require.NoError(t, err)
	assert.Equal(t, "greet", r.NodeID)
	assert.Equal(t, 2, mem.Get("mira").InteractionCount)
	assert.Len(t, mem.Get("mira").ConversationHistory, 2)

	conv, ok := e.ActiveConversation("mira")
	require.True(t, ok)
	assert.Len(t, conv.History, 1)
}

func TestHistoryCap(t *testing.T) {
	mem := memory.NewStore().WithHistoryCap(2)
	e := NewEngine(mem, &fakePlayer{}, dice.NewScripted(), nil)
	require.NoError(t, e.RegisterGraph("mira", miraGraph()))

	_, _ = e.StartConversation(mira)
	for i := 0; i < 3; i++ {
		_, err := e.SelectResponse(context.Background(), "mira", "who")
		if err != nil {
			_, err = e.SelectResponse(context.Background(), "mira", "ask")
		}
		require.NoError(t, err)
		_, err = e.SelectResponse(context.Background(), "mira", "compliment")
		require.NoError(t, err)
	}
	e.EndConversation("mira")

	h := mem.Get("mira").ConversationHistory
	require.Len(t, h, 2)
	assert.Equal(t, "greet", h[1].NodeID)
	assert.LessOrEqual(t, mem.Get("mira").Relationship, memory.MaxRelationship)
}

func TestRegisterGraph_Duplicate(t *testing.T) {
	e := NewEngine(memory.NewStore(), nil, dice.NewScripted(), nil)
	err := e.RegisterGraph("x", []Node{{ID: "a"}, {ID: "a"}})
	assert.ErrorIs(t, err, ErrDuplicateNode)
	assert.Empty(t, e.Graph("x"))
}

func TestValidate(t *testing.T) {
	assert.Empty(t, Validate(sageGraph()))
	assert.Len(t, Validate(miraGraph()), 1, "refuse points at a missing node")

	errs := Validate([]Node{
		{ID: "a", Responses: []Response{
			{ID: "r", NextNodeID: "missing"},
			{ID: "r", IsQuestAccept: true},
			{ID: "q", Requirements: []conditionals.Requirement{{Type: conditionals.RequireItem}}},
		}},
		{ID: "a"},
		{ID: "b", SkillCheck: &SkillCheck{SuccessNodeID: "a"}},
	})
	var joined []string
	for _, err := range errs {
		joined = append(joined, err.Error())
	}
	all := strings.Join(joined, "\n")
	assert.Contains(t, all, "duplicate dialogue node id: a")
	assert.Contains(t, all, "points to missing node missing")
	assert.Contains(t, all, "duplicate response id r")
	assert.Contains(t, all, "quest response on a node without quest_id")
	assert.Contains(t, all, "has no target")
	assert.Contains(t, all, "skill check has no ability")
	assert.Contains(t, all, "needs success and failure nodes")
}
