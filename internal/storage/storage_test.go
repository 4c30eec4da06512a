package storage_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/model"
	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/storage"
	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/testutil"
	"github.com/ImTheCurse/GameLens-Dashboard-Service/migrations"
)

// testDB holds a shared test database connection for all tests in this package.
var testDB *storage.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	tc := testutil.MustStartPostgres()

	var err error
	testDB, err = tc.NewTestDB(ctx, testutil.TestLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create test DB: %v\n", err)
		tc.Terminate()
		os.Exit(1)
	}

	code := m.Run()

	testDB.Close()
	tc.Terminate()
	os.Exit(code)
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func int64Ptr(n int64) *int64 { return &n }

func float64Ptr(f float64) *float64 { return &f }

func timePtr(ts time.Time) *time.Time { return &ts }

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// seedRun inserts a run for tests that need a (game_id, run_id) to hang
// facts off. endReason == "" means null; duration 0 means no ended_at.
func seedRun(t *testing.T, gameID, version, endReason string, duration time.Duration) uuid.UUID {
	t.Helper()

	req := model.InsertRunRequest{
		GameID:      gameID,
		SessionID:   "session-" + uuid.NewString(),
		StartedAt:   baseTime,
		GameVersion: strPtr(version),
	}
	if endReason != "" {
		req.EndReason = strPtr(endReason)
	}
	if duration > 0 {
		req.EndedAt = timePtr(baseTime.Add(duration))
	}

	runID, err := testDB.InsertRun(context.Background(), req)
	require.NoError(t, err)
	return runID
}

// seedEvent inserts an event so choice/death facts have a valid event_id.
func seedEvent(t *testing.T, gameID string, runID uuid.UUID) int64 {
	t.Helper()

	eventID, err := testDB.InsertEvent(context.Background(), model.InsertEventRequest{
		GameID:      gameID,
		RunID:       runID,
		OccurredAt:  baseTime,
		IngestedAt:  baseTime.Add(time.Second),
		EventTypeID: 1,
		Details:     json.RawMessage(`{"kind":"seed"}`),
	})
	require.NoError(t, err)
	return eventID
}

func TestRunMigrationsRerunIsNoop(t *testing.T) {
	// TestMain already migrated the schema; a second run must apply nothing
	// and leave existing data intact.
	require.NoError(t, testDB.RunMigrations(context.Background(), migrations.FS))

	runID := seedRun(t, "g-migrate-rerun", "1.0.0", "", 0)
	_, err := testDB.GetRun(context.Background(), "g-migrate-rerun", runID)
	require.NoError(t, err)
}

func TestInsertAndGetRun(t *testing.T) {
	ctx := context.Background()

	meta := json.RawMessage(`{"platform":"steam","mods":["hardmode","randomizer"],"settings":{"difficulty":3}}`)
	runID, err := testDB.InsertRun(ctx, model.InsertRunRequest{
		GameID:      "g-run-rt",
		SessionID:   "s1",
		StartedAt:   baseTime,
		GameVersion: strPtr("1.0.0"),
		RunMeta:     meta,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, runID)

	got, err := testDB.GetRun(ctx, "g-run-rt", runID)
	require.NoError(t, err)
	assert.Equal(t, runID, got.RunID)
	assert.Equal(t, "s1", got.SessionID)
	assert.True(t, got.StartedAt.Equal(baseTime))
	assert.Nil(t, got.EndedAt)
	assert.Nil(t, got.EndReason)
	assert.JSONEq(t, string(meta), string(got.RunMeta))
}

func TestInsertRunGeneratesDistinctIDs(t *testing.T) {
	a := seedRun(t, "g-run-ids", "1.0.0", "", 0)
	b := seedRun(t, "g-run-ids", "1.0.0", "", 0)
	assert.NotEqual(t, a, b)
}

func TestInsertRunSummaryStampsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	runID := seedRun(t, "g-summary", "1.0.0", "win", 90*time.Second)

	before := time.Now().UTC()
	err := testDB.InsertRunSummary(ctx, model.InsertRunSummaryRequest{
		GameID:     "g-summary",
		RunID:      runID,
		StartedAt:  baseTime,
		Result:     "win",
		DurationMs: int64Ptr(90000),
	})
	require.NoError(t, err)

	got, err := testDB.GetRunSummary(ctx, "g-summary", runID)
	require.NoError(t, err)
	assert.Equal(t, "win", got.Result)
	require.NotNil(t, got.DurationMs)
	assert.Equal(t, int64(90000), *got.DurationMs)
	assert.False(t, got.UpdatedAt.Before(before.Add(-time.Second)), "updated_at should be server-stamped at insert time")
	assert.WithinDuration(t, time.Now().UTC(), got.UpdatedAt, time.Minute)
}

func TestInsertRoomAndList(t *testing.T) {
	ctx := context.Background()
	runID := seedRun(t, "g-rooms", "1.0.0", "loss", 60*time.Second)

	require.NoError(t, testDB.InsertRoomSummary(ctx, model.InsertRoomRequest{
		GameID:       "g-rooms",
		RunID:        runID,
		RoomSeq:      2,
		EnteredAt:    baseTime.Add(30 * time.Second),
		UpdatedAt:    baseTime.Add(time.Minute),
		RoomNameNorm: strPtr("lava_caverns"),
	}))
	require.NoError(t, testDB.InsertRoomSummary(ctx, model.InsertRoomRequest{
		GameID:       "g-rooms",
		RunID:        runID,
		RoomSeq:      1,
		EnteredAt:    baseTime,
		UpdatedAt:    baseTime.Add(29 * time.Second),
		RoomNameNorm: strPtr("entrance"),
		ExitedAt:     timePtr(baseTime.Add(29 * time.Second)),
		CompletionMs: int64Ptr(29000),
	}))

	rooms, err := testDB.GetRoomSummaries(ctx, "g-rooms", runID)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, 1, rooms[0].RoomSeq, "rooms should come back ordered by room_seq")
	assert.Equal(t, 2, rooms[1].RoomSeq)
	assert.NotNil(t, rooms[0].ExitedAt)
	assert.Nil(t, rooms[1].ExitedAt, "unexited room marks where the run ended")
}

func TestInsertRoomUnknownRunIsForeignKeyViolation(t *testing.T) {
	err := testDB.InsertRoomSummary(context.Background(), model.InsertRoomRequest{
		GameID:    "g-rooms-fk",
		RunID:     uuid.New(),
		RoomSeq:   1,
		EnteredAt: baseTime,
		UpdatedAt: baseTime,
	})
	require.Error(t, err)
	assert.Equal(t, "ForeignKeyViolation", storage.Classify(err))
}

func TestInsertAndGetStage(t *testing.T) {
	ctx := context.Background()

	meta := json.RawMessage(`{"biome":"volcano","rooms":12}`)
	require.NoError(t, testDB.InsertStage(ctx, model.InsertStageRequest{
		StageID:       "stage-3",
		GameID:        "g-stage",
		NameNorm:      "molten_core",
		FirstSeenAt:   baseTime,
		LastSeenAt:    baseTime.Add(time.Hour),
		StageIndex:    intPtr(3),
		CanonicalName: strPtr("Molten Core"),
		Metadata:      meta,
	}))

	got, err := testDB.GetStage(ctx, "stage-3", "g-stage")
	require.NoError(t, err)
	assert.Equal(t, "molten_core", got.NameNorm)
	require.NotNil(t, got.StageIndex)
	assert.Equal(t, 3, *got.StageIndex)
	assert.JSONEq(t, string(meta), string(got.Metadata))
}

func TestInsertBossAndSummary(t *testing.T) {
	ctx := context.Background()
	runID := seedRun(t, "g-boss", "1.0.0", "win", 5*time.Minute)

	require.NoError(t, testDB.InsertBoss(ctx, model.InsertBossRequest{
		BossName: "flame_warden",
		GameID:   "g-boss",
		Metadata: json.RawMessage(`{"phase_count":2}`),
	}))

	boss, err := testDB.GetBoss(ctx, "g-boss", "flame_warden")
	require.NoError(t, err)
	assert.JSONEq(t, `{"phase_count":2}`, string(boss.Metadata))

	defeated := true
	require.NoError(t, testDB.InsertBossSummary(ctx, model.InsertBossSummaryRequest{
		GameID:            "g-boss",
		RunID:             runID,
		BossSeq:           1,
		BossName:          "flame_warden",
		EnteredAt:         baseTime,
		UpdatedAt:         baseTime.Add(45 * time.Second),
		DurationMs:        int64Ptr(45000),
		Defeated:          &defeated,
		DamageTakenInBoss: intPtr(37),
	}))

	summaries, err := testDB.GetBossSummaries(ctx, "g-boss", runID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "flame_warden", summaries[0].BossName)
	require.NotNil(t, summaries[0].Defeated)
	assert.True(t, *summaries[0].Defeated)
}

func TestInsertEventReturnsGeneratedID(t *testing.T) {
	ctx := context.Background()
	runID := seedRun(t, "g-events", "1.0.0", "", 0)

	details := json.RawMessage(`{"action":"pickup","item":{"id":"potion","count":2}}`)
	eventID, err := testDB.InsertEvent(ctx, model.InsertEventRequest{
		GameID:      "g-events",
		RunID:       runID,
		OccurredAt:  baseTime,
		IngestedAt:  baseTime.Add(time.Second),
		EventTypeID: 7,
		Confidence:  float64Ptr(0.95),
		Details:     details,
	})
	require.NoError(t, err)
	assert.Positive(t, eventID)

	got, err := testDB.GetEvent(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, eventID, got.EventID)
	assert.Equal(t, 7, got.EventTypeID)
	assert.JSONEq(t, string(details), string(got.Details))

	second, err := testDB.InsertEvent(ctx, model.InsertEventRequest{
		GameID:      "g-events",
		RunID:       runID,
		OccurredAt:  baseTime,
		IngestedAt:  baseTime,
		EventTypeID: 7,
		Details:     json.RawMessage(`{}`),
	})
	require.NoError(t, err)
	assert.Greater(t, second, eventID)
}

func TestChoiceFactBlobRoundTrip(t *testing.T) {
	ctx := context.Background()
	runID := seedRun(t, "g-choice-rt", "1.0.0", "", 0)
	eventID := seedEvent(t, "g-choice-rt", runID)

	options := json.RawMessage(`{"offered":["dash","shield","heal"],"reroll":{"used":false,"cost":25}}`)
	choiceFactID, err := testDB.InsertChoiceFact(ctx, model.InsertChoiceRequest{
		GameID:            "g-choice-rt",
		EventID:           eventID,
		RunID:             runID,
		OccurredAt:        baseTime,
		SelectedUpgradeID: "dash",
		UpdatedAt:         baseTime,
		OptionsPresent:    options,
		ChoiceContext:     json.RawMessage(`{"floor":2}`),
	})
	require.NoError(t, err)
	assert.Positive(t, choiceFactID)

	got, err := testDB.GetChoiceFact(ctx, choiceFactID)
	require.NoError(t, err)
	assert.Equal(t, "dash", got.SelectedUpgradeID)
	assert.JSONEq(t, string(options), string(got.OptionsPresent))
	assert.JSONEq(t, `{"floor":2}`, string(got.ChoiceContext))
}

func TestBlobColumnsAcceptNonObjectValues(t *testing.T) {
	ctx := context.Background()

	meta := json.RawMessage(`["modded","seed:42"]`)
	runID, err := testDB.InsertRun(ctx, model.InsertRunRequest{
		GameID:    "g-blob-shapes",
		SessionID: "s1",
		StartedAt: baseTime,
		RunMeta:   meta,
	})
	require.NoError(t, err)

	run, err := testDB.GetRun(ctx, "g-blob-shapes", runID)
	require.NoError(t, err)
	assert.JSONEq(t, string(meta), string(run.RunMeta))

	details := json.RawMessage(`[{"k":1},{"k":2}]`)
	eventID, err := testDB.InsertEvent(ctx, model.InsertEventRequest{
		GameID:      "g-blob-shapes",
		RunID:       runID,
		OccurredAt:  baseTime,
		IngestedAt:  baseTime,
		EventTypeID: 1,
		Details:     details,
	})
	require.NoError(t, err)

	event, err := testDB.GetEvent(ctx, eventID)
	require.NoError(t, err)
	assert.JSONEq(t, string(details), string(event.Details))

	scalar, err := testDB.InsertEvent(ctx, model.InsertEventRequest{
		GameID:      "g-blob-shapes",
		RunID:       runID,
		OccurredAt:  baseTime,
		IngestedAt:  baseTime,
		EventTypeID: 1,
		Details:     json.RawMessage(`"raw string payload"`),
	})
	require.NoError(t, err)

	event, err = testDB.GetEvent(ctx, scalar)
	require.NoError(t, err)
	assert.JSONEq(t, `"raw string payload"`, string(event.Details))
}

func TestDeathFactBlobRoundTrip(t *testing.T) {
	ctx := context.Background()
	runID := seedRun(t, "g-death-rt", "1.0.0", "loss", time.Minute)
	eventID := seedEvent(t, "g-death-rt", runID)

	snapshot := json.RawMessage(`[{"id":"dash","level":2},{"id":"shield","level":1}]`)
	deathFactID, err := testDB.InsertDeathFact(ctx, model.InsertDeathRequest{
		GameID:           "g-death-rt",
		RunID:            runID,
		OccurredAt:       baseTime.Add(time.Minute),
		UpdatedAt:        baseTime.Add(time.Minute),
		EventID:          eventID,
		LevelIndex:       intPtr(3),
		RoomIndex:        intPtr(5),
		HP:               intPtr(0),
		MaxHP:            intPtr(120),
		UpgradesSnapshot: snapshot,
	})
	require.NoError(t, err)
	assert.Positive(t, deathFactID)

	got, err := testDB.GetDeathFact(ctx, deathFactID)
	require.NoError(t, err)
	require.NotNil(t, got.LevelIndex)
	assert.Equal(t, 3, *got.LevelIndex)
	assert.JSONEq(t, string(snapshot), string(got.UpgradesSnapshot))
}

func TestChoiceStatsWinRate(t *testing.T) {
	ctx := context.Background()
	const gameID = "g-choice-stats"
	options := `{"tier":1,"offered":["dash","shield"]}`

	// Four picks of "dash" with the same options: three winning runs, one
	// losing. Key order differs on one insert — jsonb content equality must
	// still group it with the others.
	outcomes := []string{"win", "win", "win", "loss"}
	for i, outcome := range outcomes {
		runID := seedRun(t, gameID, "2.0.0", outcome, 100*time.Second)
		eventID := seedEvent(t, gameID, runID)

		opts := options
		if i == 1 {
			opts = `{"offered":["dash","shield"],"tier":1}`
		}
		_, err := testDB.InsertChoiceFact(ctx, model.InsertChoiceRequest{
			GameID:            gameID,
			EventID:           eventID,
			RunID:             runID,
			OccurredAt:        baseTime,
			SelectedUpgradeID: "dash",
			UpdatedAt:         baseTime,
			OptionsPresent:    json.RawMessage(opts),
		})
		require.NoError(t, err)
	}

	stats, err := testDB.ChoiceStats(ctx, gameID, "2.0.0")
	require.NoError(t, err)
	require.Len(t, stats, 1)

	s := stats[0]
	assert.Equal(t, "dash", s.SelectedUpgradeID)
	assert.Equal(t, int64(4), s.TotalPicks)
	assert.Equal(t, int64(3), s.TotalWins)
	assert.Equal(t, 75.0, s.WinRatePercentage)
	require.NotNil(t, s.AvgRunDurationSeconds)
	assert.Equal(t, 100.0, *s.AvgRunDurationSeconds)
	assert.JSONEq(t, options, string(s.OptionsPresent))
}

func TestChoiceStatsScopedByGameVersion(t *testing.T) {
	ctx := context.Background()
	const gameID = "g-choice-scope"

	runID := seedRun(t, gameID, "1.0.0", "win", time.Minute)
	eventID := seedEvent(t, gameID, runID)
	_, err := testDB.InsertChoiceFact(ctx, model.InsertChoiceRequest{
		GameID:            gameID,
		EventID:           eventID,
		RunID:             runID,
		OccurredAt:        baseTime,
		SelectedUpgradeID: "heal",
		UpdatedAt:         baseTime,
	})
	require.NoError(t, err)

	stats, err := testDB.ChoiceStats(ctx, gameID, "9.9.9")
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestBossEventsListing(t *testing.T) {
	ctx := context.Background()
	const gameID = "g-boss-events"
	runID := seedRun(t, gameID, "1.1.0", "win", 3*time.Minute)

	defeated := true
	require.NoError(t, testDB.InsertBossSummary(ctx, model.InsertBossSummaryRequest{
		GameID:            gameID,
		RunID:             runID,
		BossSeq:           1,
		BossName:          "gatekeeper",
		EnteredAt:         baseTime,
		UpdatedAt:         baseTime,
		DurationMs:        int64Ptr(62000),
		Defeated:          &defeated,
		DamageTakenInBoss: intPtr(14),
	}))

	events, err := testDB.BossEvents(ctx, gameID, "1.1.0")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "gatekeeper", events[0].BossName)
	require.NotNil(t, events[0].DurationMs)
	assert.Equal(t, int64(62000), *events[0].DurationMs)

	// Wrong version matches nothing.
	events, err = testDB.BossEvents(ctx, gameID, "0.0.1")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDeathEventsListing(t *testing.T) {
	ctx := context.Background()
	const gameID = "g-death-events"
	runID := seedRun(t, gameID, "1.2.0", "loss", 2*time.Minute)
	eventID := seedEvent(t, gameID, runID)

	// The room join supplies damage_taken_in_room; no exited_at because the
	// run died here.
	require.NoError(t, testDB.InsertRoomSummary(ctx, model.InsertRoomRequest{
		GameID:            gameID,
		RunID:             runID,
		RoomSeq:           1,
		EnteredAt:         baseTime,
		UpdatedAt:         baseTime,
		RoomNameNorm:      strPtr("spike_pit"),
		DamageTakenInRoom: intPtr(88),
	}))

	snapshot := json.RawMessage(`{"upgrades":["dash"]}`)
	_, err := testDB.InsertDeathFact(ctx, model.InsertDeathRequest{
		GameID:           gameID,
		RunID:            runID,
		OccurredAt:       baseTime.Add(2 * time.Minute),
		UpdatedAt:        baseTime.Add(2 * time.Minute),
		EventID:          eventID,
		LevelIndex:       intPtr(1),
		RoomIndex:        intPtr(4),
		UpgradesSnapshot: snapshot,
	})
	require.NoError(t, err)

	deaths, err := testDB.DeathEvents(ctx, gameID, "1.2.0")
	require.NoError(t, err)
	require.Len(t, deaths, 1)
	require.NotNil(t, deaths[0].LevelIndex)
	assert.Equal(t, 1, *deaths[0].LevelIndex)
	require.NotNil(t, deaths[0].DamageTakenInRoom)
	assert.Equal(t, 88, *deaths[0].DamageTakenInRoom)
	assert.JSONEq(t, string(snapshot), string(deaths[0].UpgradesSnapshot))
}

func TestRoomProgression(t *testing.T) {
	ctx := context.Background()
	const gameID = "g-progression"

	// Three runs enter "crypt"; two die there (no exited_at). One run also
	// passes through "entrance" and survives it.
	for i := 0; i < 3; i++ {
		runID := seedRun(t, gameID, "3.0.0", "loss", time.Minute)

		if i == 0 {
			require.NoError(t, testDB.InsertRoomSummary(ctx, model.InsertRoomRequest{
				GameID:       gameID,
				RunID:        runID,
				RoomSeq:      1,
				EnteredAt:    baseTime,
				UpdatedAt:    baseTime,
				RoomNameNorm: strPtr("entrance"),
				ExitedAt:     timePtr(baseTime.Add(10 * time.Second)),
			}))
		}

		room := model.InsertRoomRequest{
			GameID:       gameID,
			RunID:        runID,
			RoomSeq:      2,
			EnteredAt:    baseTime.Add(10 * time.Second),
			UpdatedAt:    baseTime.Add(10 * time.Second),
			RoomNameNorm: strPtr("crypt"),
		}
		if i == 2 {
			room.ExitedAt = timePtr(baseTime.Add(time.Minute))
		}
		require.NoError(t, testDB.InsertRoomSummary(ctx, room))
	}

	deadliest, totalDeaths, stats, err := testDB.RoomProgression(ctx, gameID, "3.0.0")
	require.NoError(t, err)

	require.NotNil(t, deadliest)
	assert.Equal(t, "crypt", *deadliest)
	require.NotNil(t, totalDeaths)
	assert.Equal(t, int64(2), *totalDeaths)

	require.Len(t, stats, 2)
	assert.Equal(t, "crypt", *stats[0].RoomNameNorm, "highest death rate first")
	assert.Equal(t, int64(3), stats[0].RunsEntered)
	assert.Equal(t, int64(2), stats[0].RunsEndedHere)
	assert.Equal(t, 0.67, stats[0].DeathRate)
	assert.Equal(t, "entrance", *stats[1].RoomNameNorm)
	assert.Equal(t, 0.0, stats[1].DeathRate)
}

func TestRoomProgressionEmptyGame(t *testing.T) {
	deadliest, totalDeaths, stats, err := testDB.RoomProgression(context.Background(), "g-no-such-game", "1.0.0")
	require.NoError(t, err)
	assert.Nil(t, deadliest)
	assert.Nil(t, totalDeaths)
	assert.Empty(t, stats)
}

func TestListRunsEmptyVersion(t *testing.T) {
	seedRun(t, "g-overview-empty", "1.0.0", "win", time.Minute)

	runs, err := testDB.ListRuns(context.Background(), "g-overview-empty", "does-not-exist")
	require.NoError(t, err)
	assert.Empty(t, runs)

	ov := model.ComputeRunOverview(runs)
	assert.Equal(t, 0, ov.TotalRuns)
	assert.Nil(t, ov.AvgDurationMs)
}

func TestAggregationReadsIdempotent(t *testing.T) {
	ctx := context.Background()
	const gameID = "g-idempotent"
	runID := seedRun(t, gameID, "1.0.0", "win", time.Minute)
	eventID := seedEvent(t, gameID, runID)
	_, err := testDB.InsertChoiceFact(ctx, model.InsertChoiceRequest{
		GameID:            gameID,
		EventID:           eventID,
		RunID:             runID,
		OccurredAt:        baseTime,
		SelectedUpgradeID: "shield",
		UpdatedAt:         baseTime,
		OptionsPresent:    json.RawMessage(`{"offered":["shield"]}`),
	})
	require.NoError(t, err)

	first, err := testDB.ChoiceStats(ctx, gameID, "1.0.0")
	require.NoError(t, err)
	second, err := testDB.ChoiceStats(ctx, gameID, "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
