package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/lk16/reversi/internal/models"
	"github.com/lk16/reversi/internal/services"
)

const (
	selfPlayStatsKey = "selfplay_stats"

	statsGamesField   = "games"
	statsSamplesField = "samples"
	outcomePrefix     = "outcome:"
	boardSizePrefix   = "size:"

	// Postgres accepts at most 65535 parameters per statement.
	samplesPerInsert = 1000
	sampleColumns    = 9
	gameColumns      = 8
)

const schema = `
	CREATE TABLE IF NOT EXISTS selfplay_games (
		game_id     UUID PRIMARY KEY,
		generation  INTEGER NOT NULL,
		board_rows  INTEGER NOT NULL,
		board_cols  INTEGER NOT NULL,
		turns       INTEGER NOT NULL,
		outcome     TEXT NOT NULL,
		black_count INTEGER NOT NULL,
		white_count INTEGER NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS selfplay_samples (
		game_id    UUID NOT NULL REFERENCES selfplay_games (game_id) ON DELETE CASCADE,
		turn       INTEGER NOT NULL,
		generation INTEGER NOT NULL,
		board_rows INTEGER NOT NULL,
		board_cols INTEGER NOT NULL,
		player     TEXT NOT NULL,
		state      REAL[] NOT NULL,
		target     REAL[] NOT NULL,
		move       INTEGER NOT NULL,
		PRIMARY KEY (game_id, turn)
	);

	CREATE INDEX IF NOT EXISTS selfplay_samples_generation_idx ON selfplay_samples (generation);
`

// SelfPlayRepository stores self-play games in Postgres and keeps counters in Redis.
type SelfPlayRepository struct {
	services *services.Services
}

// NewSelfPlayRepository creates a new SelfPlayRepository.
func NewSelfPlayRepository(c *fiber.Ctx) *SelfPlayRepository {
	services := c.Locals("services").(*services.Services) //nolint: errcheck

	return &SelfPlayRepository{
		services: services,
	}
}

func NewSelfPlayRepositoryFromServices(services *services.Services) *SelfPlayRepository {
	return &SelfPlayRepository{
		services: services,
	}
}

// Migrate creates the tables if they do not exist yet.
func (repo *SelfPlayRepository) Migrate(ctx context.Context) error {
	if _, err := repo.services.Postgres.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("error creating self-play schema: %w", err)
	}
	return nil
}

type insertedGame struct {
	GameID  string `db:"game_id"`
	Outcome string `db:"outcome"`
	Rows    int    `db:"board_rows"`
	Cols    int    `db:"board_cols"`
}

// SubmitGames stores a batch of games with their samples. Games that were submitted
// before are skipped and not counted again. It returns the number of stored games.
func (repo *SelfPlayRepository) SubmitGames(ctx context.Context, payload models.GamesPayload) (int, error) {
	if len(payload.Games) == 0 {
		return 0, nil
	}

	tx, err := repo.services.Postgres.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	inserted, err := insertGames(ctx, tx, payload.Games)
	if err != nil {
		return 0, err
	}

	insertedIDs := make(map[string]bool, len(inserted))
	for _, game := range inserted {
		insertedIDs[game.GameID] = true
	}

	samples := make([]models.Sample, 0, payload.SampleCount())
	for _, game := range payload.Games {
		if insertedIDs[game.GameID] {
			samples = append(samples, game.Samples...)
		}
	}

	for start := 0; start < len(samples); start += samplesPerInsert {
		end := min(start+samplesPerInsert, len(samples))
		if err = insertSamples(ctx, tx, samples[start:end]); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing games: %w", err)
	}

	if len(inserted) == 0 {
		return 0, nil
	}

	// Update Redis in a single pipeline
	pipe := repo.services.Redis.Pipeline()
	pipe.HIncrBy(ctx, selfPlayStatsKey, statsGamesField, int64(len(inserted)))
	pipe.HIncrBy(ctx, selfPlayStatsKey, statsSamplesField, int64(len(samples)))
	for _, game := range inserted {
		pipe.HIncrBy(ctx, selfPlayStatsKey, outcomePrefix+game.Outcome, 1)
		pipe.HIncrBy(ctx, selfPlayStatsKey, boardSizePrefix+models.BoardSizeKey(game.Rows, game.Cols), 1)
	}
	if _, err = pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("error updating Redis stats: %w", err)
	}

	return len(inserted), nil
}

func insertGames(ctx context.Context, tx *sqlx.Tx, games []models.GameRecord) ([]insertedGame, error) {
	var valuesClause strings.Builder
	params := make([]interface{}, 0, len(games)*gameColumns)

	for i, game := range games {
		if i > 0 {
			valuesClause.WriteString(", ")
		}
		writePlaceholders(&valuesClause, i*gameColumns, gameColumns)

		params = append(params,
			game.GameID,
			game.Generation,
			game.Rows,
			game.Cols,
			game.Turns,
			game.Outcome,
			game.BlackCount,
			game.WhiteCount,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO selfplay_games
			(game_id, generation, board_rows, board_cols, turns, outcome, black_count, white_count)
		VALUES %s
		ON CONFLICT (game_id) DO NOTHING
		RETURNING game_id, outcome, board_rows, board_cols;
	`, valuesClause.String())

	var inserted []insertedGame
	if err := tx.SelectContext(ctx, &inserted, query, params...); err != nil {
		return nil, fmt.Errorf("error inserting games: %w", err)
	}

	return inserted, nil
}

func insertSamples(ctx context.Context, tx *sqlx.Tx, samples []models.Sample) error {
	var valuesClause strings.Builder
	params := make([]interface{}, 0, len(samples)*sampleColumns)

	for i, sample := range samples {
		if i > 0 {
			valuesClause.WriteString(", ")
		}
		writePlaceholders(&valuesClause, i*sampleColumns, sampleColumns)

		params = append(params,
			sample.GameID,
			sample.Turn,
			sample.Generation,
			sample.Rows,
			sample.Cols,
			sample.Player,
			pq.Array(sample.State),
			pq.Array(sample.Target),
			sample.Move,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO selfplay_samples
			(game_id, turn, generation, board_rows, board_cols, player, state, target, move)
		VALUES %s
		ON CONFLICT (game_id, turn) DO NOTHING;
	`, valuesClause.String())

	if _, err := tx.ExecContext(ctx, query, params...); err != nil {
		return fmt.Errorf("error inserting samples: %w", err)
	}

	return nil
}

// writePlaceholders writes "($offset+1, ..., $offset+count)".
func writePlaceholders(builder *strings.Builder, offset, count int) {
	builder.WriteByte('(')
	for j := range count {
		if j > 0 {
			builder.WriteString(", ")
		}
		builder.WriteByte('$')
		builder.WriteString(strconv.Itoa(offset + j + 1))
	}
	builder.WriteByte(')')
}

// GetGameSamples returns all samples of a game ordered by turn.
func (repo *SelfPlayRepository) GetGameSamples(ctx context.Context, gameID string) ([]models.Sample, error) {
	query := `
		SELECT game_id, turn, generation, board_rows, board_cols, player, state, target, move
		FROM selfplay_samples
		WHERE game_id = $1
		ORDER BY turn
	`

	rows, err := repo.services.Postgres.QueryxContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("error looking up samples: %w", err)
	}
	defer rows.Close()

	samples := make([]models.Sample, 0)
	for rows.Next() {
		var sample models.Sample
		var state, target pq.Float32Array

		err = rows.Scan(
			&sample.GameID, &sample.Turn, &sample.Generation, &sample.Rows, &sample.Cols,
			&sample.Player, &state, &target, &sample.Move,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning sample: %w", err)
		}

		sample.State = state
		sample.Target = target
		samples = append(samples, sample)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading samples: %w", err)
	}

	return samples, nil
}

func (repo *SelfPlayRepository) buildInitialStats(ctx context.Context) error {
	pgConn := repo.services.Postgres

	query := `
		SELECT g.outcome, g.board_rows, g.board_cols, count(*) AS games,
			coalesce(sum(s.samples), 0)::BIGINT AS samples
		FROM selfplay_games g
		LEFT JOIN (
			SELECT game_id, count(*) AS samples
			FROM selfplay_samples
			GROUP BY game_id
		) s ON s.game_id = g.game_id
		GROUP BY g.outcome, g.board_rows, g.board_cols
	`

	type statRow struct {
		Outcome string `db:"outcome"`
		Rows    int    `db:"board_rows"`
		Cols    int    `db:"board_cols"`
		Games   int64  `db:"games"`
		Samples int64  `db:"samples"`
	}

	var stats []statRow
	if err := pgConn.SelectContext(ctx, &stats, query); err != nil {
		return fmt.Errorf("error loading self-play stats: %w", err)
	}

	statsMap := map[string]int64{
		statsGamesField:   0,
		statsSamplesField: 0,
	}
	for _, stat := range stats {
		statsMap[statsGamesField] += stat.Games
		statsMap[statsSamplesField] += stat.Samples
		statsMap[outcomePrefix+stat.Outcome] += stat.Games
		statsMap[boardSizePrefix+models.BoardSizeKey(stat.Rows, stat.Cols)] += stat.Games
	}

	values := make(map[string]interface{}, len(statsMap))
	for key, value := range statsMap {
		values[key] = value
	}

	if err := repo.services.Redis.HSet(ctx, selfPlayStatsKey, values).Err(); err != nil {
		return fmt.Errorf("error storing self-play stats in Redis: %w", err)
	}

	return nil
}

// GetStats returns the self-play counters, rebuilding them from Postgres when Redis lost them.
func (repo *SelfPlayRepository) GetStats(ctx context.Context) (models.SelfPlayStats, error) {
	redisConn := repo.services.Redis

	stats, err := redisConn.HGetAll(ctx, selfPlayStatsKey).Result()
	if err != nil {
		return models.SelfPlayStats{}, fmt.Errorf("error getting self-play stats from Redis: %w", err)
	}

	if len(stats) == 0 {
		if err = repo.buildInitialStats(ctx); err != nil {
			return models.SelfPlayStats{}, fmt.Errorf("error building initial self-play stats: %w", err)
		}

		stats, err = redisConn.HGetAll(ctx, selfPlayStatsKey).Result()
		if err != nil {
			return models.SelfPlayStats{}, fmt.Errorf("error getting self-play stats from Redis after build: %w", err)
		}
	}

	return parseStats(stats)
}

func parseStats(stats map[string]string) (models.SelfPlayStats, error) {
	result := models.SelfPlayStats{
		Outcomes:  make(map[string]int64),
		BoardSize: make(map[string]int64),
	}

	for key, value := range stats {
		count, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return models.SelfPlayStats{}, fmt.Errorf("error parsing self-play stats value %q: %w", key, err)
		}

		switch {
		case key == statsGamesField:
			result.Games = count
		case key == statsSamplesField:
			result.Samples = count
		case strings.HasPrefix(key, outcomePrefix):
			result.Outcomes[strings.TrimPrefix(key, outcomePrefix)] = count
		case strings.HasPrefix(key, boardSizePrefix):
			result.BoardSize[strings.TrimPrefix(key, boardSizePrefix)] = count
		default:
			return models.SelfPlayStats{}, fmt.Errorf("unknown self-play stats key %q", key)
		}
	}

	return result, nil
}
