package database

import "database/sql"

// schema holds the idempotent DDL run on startup. Every parent/child edge
// carries ON DELETE CASCADE so deleting an owner removes the whole chain of
// people, debts, and transactions. The partial unique index on debts is what
// guarantees at most one active debt per (person, direction) even under
// concurrent lookup-or-create.
const schema = `
CREATE TABLE IF NOT EXISTS owners (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS people (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    owner_id UUID NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (owner_id, name)
);

CREATE TABLE IF NOT EXISTS debts (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    person_id UUID NOT NULL REFERENCES people(id) ON DELETE CASCADE,
    direction TEXT NOT NULL CHECK (direction IN ('lent', 'borrowed')),
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'settled')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_debts_one_active_per_pair
    ON debts (person_id, direction) WHERE status = 'active';

CREATE TABLE IF NOT EXISTS transactions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    debt_id UUID NOT NULL REFERENCES debts(id) ON DELETE CASCADE,
    amount NUMERIC(18, 2) NOT NULL CHECK (amount > 0),
    kind TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_people_owner_id ON people (owner_id);
CREATE INDEX IF NOT EXISTS idx_debts_person_id ON debts (person_id);
CREATE INDEX IF NOT EXISTS idx_transactions_debt_id ON transactions (debt_id);
`

func migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
