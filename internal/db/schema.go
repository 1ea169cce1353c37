package db

// SchemaSQL contains the database schema initialization SQL.
// "case" is a reserved word in SurrealQL, so the table is legal_case.
const SchemaSQL = `
    -- ==========================================================================
    -- CLIENT TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS client SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS name ON client TYPE string;
    DEFINE FIELD IF NOT EXISTS email ON client TYPE string;
    DEFINE FIELD IF NOT EXISTS phone ON client TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS company_name ON client TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS status ON client TYPE string DEFAULT "prospect"
        ASSERT $value IN ["active", "inactive", "prospect"];
    DEFINE FIELD IF NOT EXISTS notes ON client TYPE array<object> FLEXIBLE DEFAULT [];
    DEFINE FIELD IF NOT EXISTS total_matters ON client TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS created ON client TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS client_email ON client FIELDS email UNIQUE;
    DEFINE INDEX IF NOT EXISTS client_status ON client FIELDS status;

    -- ==========================================================================
    -- CASE TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS legal_case SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS title ON legal_case TYPE string;
    DEFINE FIELD IF NOT EXISTS case_number ON legal_case TYPE string;
    DEFINE FIELD IF NOT EXISTS client_id ON legal_case TYPE string;
    DEFINE FIELD IF NOT EXISTS client_name ON legal_case TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS status ON legal_case TYPE string DEFAULT "intake"
        ASSERT $value IN ["intake", "discovery", "trial", "closed"];
    DEFINE FIELD IF NOT EXISTS priority ON legal_case TYPE string DEFAULT "medium"
        ASSERT $value IN ["high", "medium", "low"];
    DEFINE FIELD IF NOT EXISTS assigned_team ON legal_case TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS deadline ON legal_case TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS description ON legal_case TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS created ON legal_case TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS case_number ON legal_case FIELDS case_number UNIQUE;
    DEFINE INDEX IF NOT EXISTS case_status ON legal_case FIELDS status;
    DEFINE INDEX IF NOT EXISTS case_priority ON legal_case FIELDS priority;

    -- ==========================================================================
    -- TASK TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS task SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS title ON task TYPE string;
    DEFINE FIELD IF NOT EXISTS description ON task TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS status ON task TYPE string DEFAULT "pending"
        ASSERT $value IN ["pending", "in-progress", "completed"];
    DEFINE FIELD IF NOT EXISTS priority ON task TYPE string DEFAULT "medium"
        ASSERT $value IN ["high", "medium", "low"];
    DEFINE FIELD IF NOT EXISTS assigned_to_id ON task TYPE string;
    DEFINE FIELD IF NOT EXISTS assigned_to_name ON task TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS related_case_id ON task TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS related_case ON task TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS due_date ON task TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS created ON task TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS task_status ON task FIELDS status;
    DEFINE INDEX IF NOT EXISTS task_priority ON task FIELDS priority;

    -- ==========================================================================
    -- TEAM MEMBER TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS team_member SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS name ON team_member TYPE string;
    DEFINE FIELD IF NOT EXISTS email ON team_member TYPE string;
    DEFINE FIELD IF NOT EXISTS role ON team_member TYPE string
        ASSERT $value IN ["partner", "associate", "paralegal", "staff"];
    DEFINE FIELD IF NOT EXISTS specialties ON team_member TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS avatar_url ON team_member TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS created ON team_member TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS team_member_email ON team_member FIELDS email UNIQUE;
    DEFINE INDEX IF NOT EXISTS team_member_role ON team_member FIELDS role;
`
