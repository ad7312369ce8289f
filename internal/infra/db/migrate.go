package db

import (
	"database/sql"
	_ "embed"
)

//go:embed seeds/campaigns.sql
var seedCampaignsSQL string

func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS campaigns (
    id                SERIAL PRIMARY KEY,
    name              TEXT NOT NULL UNIQUE,
    brief             TEXT NOT NULL DEFAULT '',
    objective         VARCHAR(20) NOT NULL DEFAULT 'Awareness',
    status            VARCHAR(20) NOT NULL DEFAULT 'draft',
    channels          JSONB,
    copy_config       JSONB,
    last_published_at TIMESTAMPTZ,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    id           SERIAL PRIMARY KEY,
    campaign_id  INTEGER NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
    channel      VARCHAR(20) NOT NULL,
    headline     TEXT NOT NULL,
    body         TEXT NOT NULL,
    link_url     TEXT NOT NULL DEFAULT '',
    status       VARCHAR(20) NOT NULL DEFAULT 'draft',
    attempts     INTEGER NOT NULL DEFAULT 0,
    scheduled_at TIMESTAMPTZ NOT NULL,
    published_at TIMESTAMPTZ,
    created_at   TIMESTAMPTZ DEFAULT now()
)`); err != nil {
		return err
	}

	// パフォーマンス最適化: インデックス追加
	indexes := []string{
		// ORDER BY scheduled_at DESC で使用(全クエリで使用)
		`CREATE INDEX IF NOT EXISTS idx_posts_scheduled_at ON posts(scheduled_at DESC)`,
		// キャンペーン別投稿取得用
		`CREATE INDEX IF NOT EXISTS idx_posts_campaign_id ON posts(campaign_id)`,
		// 配信予定スキャン用(WHERE status = 'scheduled')
		`CREATE INDEX IF NOT EXISTS idx_posts_due ON posts(scheduled_at) WHERE status = 'scheduled'`,
		// アクティブキャンペーン絞り込み用(WHERE status = 'active')
		`CREATE INDEX IF NOT EXISTS idx_campaigns_active ON campaigns(status) WHERE status = 'active'`,
	}

	// pg_trgm拡張を有効化(ILIKE検索高速化用)
	// エラーを無視(既に存在する場合やスーパーユーザー権限がない場合)
	_, _ = db.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`)

	// ILIKE検索用GINインデックス追加(マルチキーワード検索高速化)
	searchIndexes := []string{
		// 投稿見出し・本文のILIKE検索用
		`CREATE INDEX IF NOT EXISTS idx_posts_headline_gin ON posts USING gin(headline gin_trgm_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_body_gin ON posts USING gin(body gin_trgm_ops)`,
		// キャンペーン名・ブリーフのILIKE検索用
		`CREATE INDEX IF NOT EXISTS idx_campaigns_name_gin ON campaigns USING gin(name gin_trgm_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_campaigns_brief_gin ON campaigns USING gin(brief gin_trgm_ops)`,
	}
	for _, idx := range searchIndexes {
		// pg_trgm拡張がない場合はエラーになるため無視
		_, _ = db.Exec(idx)
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// 投稿ステータス制約追加
	// PostgreSQL特有の制約構文のため、エラーを無視(既に存在する場合)
	_, _ = db.Exec(`
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint
        WHERE conname = 'chk_post_status'
    ) THEN
        ALTER TABLE posts ADD CONSTRAINT chk_post_status
        CHECK (status IN ('draft', 'scheduled', 'publishing', 'published', 'failed'));
    END IF;
END $$;
`)

	// キャンペーン目的制約追加
	_, _ = db.Exec(`
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint
        WHERE conname = 'chk_campaign_objective'
    ) THEN
        ALTER TABLE campaigns ADD CONSTRAINT chk_campaign_objective
        CHECK (objective IN ('Awareness', 'Launch', 'Nurture', 'Winback'));
    END IF;
END $$;
`)

	// Embedding Feature: pgvector拡張を有効化
	// エラーを無視(既に存在する場合やスーパーユーザー権限がない場合)
	_, _ = db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`)

	// Embedding Feature: post_embeddings テーブル作成
	// Note: post_id is INTEGER to match posts.id (SERIAL = INTEGER)
	// Note: vector(1536) is fixed size for OpenAI text-embedding-3-small model
	//       The dimension column stores metadata for validation purposes
	//       If multi-dimension support is needed, consider separate tables per dimension
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS post_embeddings (
    id              SERIAL PRIMARY KEY,
    post_id         INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    embedding_type  VARCHAR(50) NOT NULL,
    provider        VARCHAR(50) NOT NULL,
    model           VARCHAR(100) NOT NULL,
    dimension       INT NOT NULL,
    embedding       vector(1536) NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE(post_id, embedding_type, provider, model)
)`); err != nil {
		return err
	}

	// Embedding Feature: post_embeddings インデックス追加
	embeddingIndexes := []string{
		// post_id による検索用 B-tree インデックス
		`CREATE INDEX IF NOT EXISTS idx_post_embeddings_post_id ON post_embeddings(post_id)`,
	}
	for _, idx := range embeddingIndexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// Embedding Feature: IVFFlat ベクトル類似検索インデックス
	// エラーを無視(pgvector拡張がない場合にエラーとなるため)
	// lists=100 は <1M レコードに適した値
	_, _ = db.Exec(`
CREATE INDEX IF NOT EXISTS idx_post_embeddings_vector
    ON post_embeddings USING ivfflat (embedding vector_cosine_ops)
    WITH (lists = 100)`)

	// シードデータの投入(重複は自動的にスキップ)
	if _, err := db.Exec(seedCampaignsSQL); err != nil {
		return err
	}

	return nil
}

// MigrateDown rolls back the database schema.
// This function removes tables and indexes in reverse order of creation.
// Use with caution: this will delete all data in the affected tables.
func MigrateDown(db *sql.DB) error {
	// Embedding Feature: Drop post_embeddings table and related objects
	// Drop indexes first (CASCADE will handle this automatically, but explicit is safer)
	dropStatements := []string{
		// Drop IVFFlat vector index
		`DROP INDEX IF EXISTS idx_post_embeddings_vector`,
		// Drop post_id index
		`DROP INDEX IF EXISTS idx_post_embeddings_post_id`,
		// Drop post_embeddings table (CASCADE to handle foreign key references)
		`DROP TABLE IF EXISTS post_embeddings CASCADE`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	// Note: We do NOT drop the vector extension as it may be used by other tables
	// Note: We do NOT drop campaigns/posts tables as they are core tables

	return nil
}

// MigrateDownEmbeddingsOnly rolls back only the embedding feature.
// This is a targeted rollback that preserves other schema elements.
func MigrateDownEmbeddingsOnly(db *sql.DB) error {
	dropStatements := []string{
		`DROP INDEX IF EXISTS idx_post_embeddings_vector`,
		`DROP INDEX IF EXISTS idx_post_embeddings_post_id`,
		`DROP TABLE IF EXISTS post_embeddings CASCADE`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
