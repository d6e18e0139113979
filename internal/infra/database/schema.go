package database

type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations are applied in order; never edit one that has shipped.
var migrations = []migration{
	{
		Version: 1,
		Name:    "users and journal entries",
		SQL: `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    username VARCHAR(80) NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS entries (
    id UUID PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    content TEXT NOT NULL,
    analyzed BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS entries_user_created_idx ON entries (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS emotion_scores (
    entry_id UUID PRIMARY KEY REFERENCES entries(id) ON DELETE CASCADE,
    joy DOUBLE PRECISION NOT NULL DEFAULT 0,
    sadness DOUBLE PRECISION NOT NULL DEFAULT 0,
    anger DOUBLE PRECISION NOT NULL DEFAULT 0,
    fear DOUBLE PRECISION NOT NULL DEFAULT 0,
    surprise DOUBLE PRECISION NOT NULL DEFAULT 0
);
`,
	},
	{
		Version: 2,
		Name:    "entry tags",
		SQL: `
CREATE TABLE IF NOT EXISTS tags (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name VARCHAR(50) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, name)
);

CREATE TABLE IF NOT EXISTS entry_tags (
    entry_id UUID NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
    tag_id BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    position INT NOT NULL DEFAULT 0,
    PRIMARY KEY (entry_id, tag_id)
);

CREATE INDEX IF NOT EXISTS entry_tags_tag_idx ON entry_tags (tag_id);
`,
	},
}
