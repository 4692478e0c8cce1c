package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is checked before any step runs; its presence means the
// schema is already in place. Steps run in one transaction, so the sentinel
// never exists without the rest of the schema.
const sentinelTable = "public.users"

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  email       TEXT        NOT NULL UNIQUE,
  first_name  TEXT        NOT NULL,
  last_name   TEXT        NOT NULL,
  phone       TEXT        NOT NULL UNIQUE,
  is_active   BOOLEAN     NOT NULL DEFAULT true,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_security",
		SQL: `CREATE TABLE IF NOT EXISTS security (
  user_id       UUID        PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
  password_hash TEXT        NOT NULL,
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_delivery_user_info",
		SQL: `CREATE TABLE IF NOT EXISTS delivery_user_info (
  user_id      UUID        PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
  first_name   TEXT        NOT NULL,
  last_name    TEXT        NOT NULL,
  phone        TEXT        NOT NULL,
  city         TEXT        NOT NULL,
  post_service TEXT        NOT NULL CHECK (post_service IN ('nova_poshta', 'ukrposhta', 'meest')),
  post_office  INTEGER     NOT NULL CHECK (post_office > 0),
  updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_shops",
		SQL: `CREATE TABLE IF NOT EXISTS shops (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  owner_id    UUID        NOT NULL REFERENCES users (id),
  name        TEXT        NOT NULL,
  description TEXT        NOT NULL DEFAULT '',
  phone       TEXT        NOT NULL,
  is_active   BOOLEAN     NOT NULL DEFAULT true,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_shops_name_lower",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS shops_name_lower_idx ON shops (lower(name));`,
	},
	{
		Name: "create_index_shops_owner_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_shops_owner_id ON shops (owner_id);`,
	},
	{
		Name: "create_table_categories",
		SQL: `CREATE TABLE IF NOT EXISTS categories (
  id   INTEGER PRIMARY KEY,
  slug TEXT    NOT NULL UNIQUE,
  name TEXT    NOT NULL
);`,
	},
	{
		Name: "create_table_subcategories",
		SQL: `CREATE TABLE IF NOT EXISTS subcategories (
  id          INTEGER PRIMARY KEY,
  category_id INTEGER NOT NULL REFERENCES categories (id),
  slug        TEXT    NOT NULL UNIQUE,
  name        TEXT    NOT NULL
);`,
	},
	{
		Name: "create_table_products",
		SQL: `CREATE TABLE IF NOT EXISTS products (
  id             UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  shop_id        UUID        NOT NULL REFERENCES shops (id),
  category_id    INTEGER     NOT NULL REFERENCES categories (id),
  subcategory_id INTEGER     REFERENCES subcategories (id),
  title          TEXT        NOT NULL,
  is_active      BOOLEAN     NOT NULL DEFAULT true,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_products_shop_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_products_shop_id ON products (shop_id);`,
	},
	{
		Name: "create_index_products_category",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_products_category ON products (category_id, subcategory_id);`,
	},
	{
		Name: "create_index_products_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_products_created_at ON products (created_at);`,
	},
	{
		Name: "create_table_product_details",
		SQL: `CREATE TABLE IF NOT EXISTS product_details (
  id              UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  product_id      UUID          NOT NULL UNIQUE REFERENCES products (id) ON DELETE CASCADE,
  description     TEXT          NOT NULL,
  price           NUMERIC(12,2) NOT NULL CHECK (price > 0),
  quantity        INTEGER       NOT NULL CHECK (quantity >= 0),
  status          TEXT          NOT NULL CHECK (status IN ('available', 'out_of_stock', 'pre_order')),
  characteristics JSONB         NOT NULL DEFAULT '{}'::jsonb,
  updated_at      TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_product_photos",
		SQL: `CREATE TABLE IF NOT EXISTS product_photos (
  id                UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  product_detail_id UUID        NOT NULL REFERENCES product_details (id) ON DELETE CASCADE,
  storage_path      TEXT        NOT NULL UNIQUE,
  content_type      TEXT        NOT NULL,
  size              BIGINT      NOT NULL CHECK (size >= 0),
  is_main           BOOLEAN     NOT NULL DEFAULT false,
  position          INTEGER     NOT NULL,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_product_photos_main",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS product_photos_main_idx ON product_photos (product_detail_id) WHERE is_main;`,
	},
	{
		Name: "seed_categories",
		SQL: `INSERT INTO categories (id, slug, name) VALUES
  (1, 'clothes', 'Одяг'),
  (2, 'shoes', 'Взуття'),
  (3, 'accessories', 'Аксесуари'),
  (4, 'home', 'Дім'),
  (5, 'beauty', 'Краса'),
  (6, 'handmade', 'Хендмейд')
ON CONFLICT (id) DO NOTHING;`,
	},
	{
		Name: "seed_subcategories",
		SQL: `INSERT INTO subcategories (id, category_id, slug, name) VALUES
  (1, 1, 'sweaters', 'Светри'),
  (2, 1, 'dresses', 'Сукні'),
  (3, 1, 'outerwear', 'Верхній одяг'),
  (4, 2, 'sneakers', 'Кросівки'),
  (5, 2, 'boots', 'Черевики'),
  (6, 3, 'bags', 'Сумки'),
  (7, 3, 'jewelry', 'Прикраси'),
  (8, 4, 'textile', 'Текстиль'),
  (9, 4, 'decor', 'Декор'),
  (10, 5, 'skincare', 'Догляд за шкірою'),
  (11, 5, 'cosmetics', 'Косметика'),
  (12, 6, 'ceramics', 'Кераміка'),
  (13, 6, 'toys', 'Іграшки')
ON CONFLICT (id) DO NOTHING;`,
	},
}

// EnsureMigrated creates the schema and seeds the taxonomy unless the
// sentinel table already exists. Either every step is applied or none is.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass($1) IS NOT NULL"
	if err := db.QueryRowContext(ctx, query, sentinelTable).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("msg", "schema already exists, skipping migration"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"), zap.Int("steps", len(steps)))

	if err := applySteps(ctx, db, log); err != nil {
		return err
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

func applySteps(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("db_migration_failed", zap.String("status", "error"), zap.Error(err))
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Debug("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	if err := tx.Commit(); err != nil {
		log.Error("db_migration_failed", zap.String("status", "error"), zap.Error(err))
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
