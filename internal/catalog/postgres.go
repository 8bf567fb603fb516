package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/przemyslaw-muller/allworkouts/internal/domain"
)

// PostgresCatalog reads the exercise vocabulary and equipment ownership from
// the relational store owned by the CRUD layer. All access is read-only apart
// from the projector upserts.
type PostgresCatalog struct {
	pool *pgxpool.Pool
}

// NewPostgresCatalog constructs a PostgresCatalog.
func NewPostgresCatalog(pool *pgxpool.Pool) *PostgresCatalog {
	return &PostgresCatalog{pool: pool}
}

// Exercises loads the full catalog snapshot, name-ordered.
func (c *PostgresCatalog) Exercises(ctx context.Context) ([]domain.CanonicalExercise, error) {
	const query = `SELECT exercise_id, name, primary_muscle_groups, secondary_muscle_groups, synonyms
        FROM exercises ORDER BY name`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CanonicalExercise
	index := make(map[string]int)
	for rows.Next() {
		var ex domain.CanonicalExercise
		if err := rows.Scan(&ex.ID, &ex.Name, &ex.PrimaryMuscleGroups, &ex.SecondaryMuscleGroups, &ex.Synonyms); err != nil {
			return nil, err
		}
		index[ex.ID] = len(out)
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const equipmentQuery = `SELECT exercise_id, equipment_id FROM exercise_equipment ORDER BY exercise_id, equipment_id`
	eqRows, err := c.pool.Query(ctx, equipmentQuery)
	if err != nil {
		return nil, err
	}
	defer eqRows.Close()

	for eqRows.Next() {
		var exerciseID, equipmentID string
		if err := eqRows.Scan(&exerciseID, &equipmentID); err != nil {
			return nil, err
		}
		if i, ok := index[exerciseID]; ok {
			out[i].RequiredEquipment = append(out[i].RequiredEquipment, equipmentID)
		}
	}
	return out, eqRows.Err()
}

// OwnedEquipment returns the user's active equipment ids.
func (c *PostgresCatalog) OwnedEquipment(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT equipment_id FROM user_equipment
        WHERE user_id=$1 AND deleted_at IS NULL ORDER BY equipment_id`

	rows, err := c.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Upsert writes a projected catalog event into the exercises table. The
// equipment link rows are replaced wholesale inside one transaction.
func (c *PostgresCatalog) Upsert(ctx context.Context, ex domain.CanonicalExercise) error {
	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const upsert = `INSERT INTO exercises (exercise_id, name, primary_muscle_groups, secondary_muscle_groups, synonyms)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (exercise_id) DO UPDATE SET
            name=EXCLUDED.name,
            primary_muscle_groups=EXCLUDED.primary_muscle_groups,
            secondary_muscle_groups=EXCLUDED.secondary_muscle_groups,
            synonyms=EXCLUDED.synonyms`

	if _, err := tx.Exec(ctx, upsert, ex.ID, ex.Name, ex.PrimaryMuscleGroups, ex.SecondaryMuscleGroups, ex.Synonyms); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM exercise_equipment WHERE exercise_id=$1`, ex.ID); err != nil {
		return err
	}
	for _, eq := range ex.RequiredEquipment {
		if _, err := tx.Exec(ctx, `INSERT INTO exercise_equipment (exercise_id, equipment_id) VALUES ($1,$2)`, ex.ID, eq); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Delete removes a projected exercise and its equipment links.
func (c *PostgresCatalog) Delete(ctx context.Context, id string) error {
	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM exercise_equipment WHERE exercise_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM exercises WHERE exercise_id=$1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
