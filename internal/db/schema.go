package db

// Resources lists the tables exposed through the data API, in wipe
// order (referencing tables before referenced ones).
var Resources = []string{
	"google_ads_campaign",
	"marketing_strategy",
	"website_analysis",
	"blog_post",
	"category",
	"profile",
}

// SchemaSQL contains the database schema initialization SQL.
const SchemaSQL = `
    -- ==========================================================================
    -- WEBSITE ANALYSIS
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS website_analysis SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS url ON website_analysis TYPE string;
    DEFINE FIELD IF NOT EXISTS description ON website_analysis TYPE string;
    DEFINE FIELD IF NOT EXISTS keywords ON website_analysis TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS industry ON website_analysis TYPE string;
    DEFINE FIELD IF NOT EXISTS created ON website_analysis TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS website_analysis_url ON website_analysis FIELDS url;
    DEFINE INDEX IF NOT EXISTS website_analysis_industry ON website_analysis FIELDS industry;

    -- ==========================================================================
    -- MARKETING STRATEGY
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS marketing_strategy SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS website_analysis_id ON marketing_strategy TYPE string;
    DEFINE FIELD IF NOT EXISTS title ON marketing_strategy TYPE string;
    DEFINE FIELD IF NOT EXISTS target_audience ON marketing_strategy TYPE string;
    DEFINE FIELD IF NOT EXISTS budget_recommendation ON marketing_strategy TYPE float;
    DEFINE FIELD IF NOT EXISTS notes ON marketing_strategy TYPE string;
    DEFINE FIELD IF NOT EXISTS industry_override ON marketing_strategy TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created ON marketing_strategy TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS marketing_strategy_analysis ON marketing_strategy FIELDS website_analysis_id;

    -- ==========================================================================
    -- GOOGLE ADS CAMPAIGN
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS google_ads_campaign SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS marketing_strategy_id ON google_ads_campaign TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS name ON google_ads_campaign TYPE string;
    DEFINE FIELD IF NOT EXISTS headlines ON google_ads_campaign TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS descriptions ON google_ads_campaign TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS keywords ON google_ads_campaign TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS daily_budget ON google_ads_campaign TYPE float DEFAULT 0.0;
    DEFINE FIELD IF NOT EXISTS status ON google_ads_campaign TYPE string DEFAULT 'draft';
    DEFINE FIELD IF NOT EXISTS created ON google_ads_campaign TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS google_ads_campaign_status ON google_ads_campaign FIELDS status;

    -- ==========================================================================
    -- BLOG POST / CATEGORY
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS blog_post SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS title ON blog_post TYPE string;
    DEFINE FIELD IF NOT EXISTS slug ON blog_post TYPE string;
    DEFINE FIELD IF NOT EXISTS content ON blog_post TYPE string;
    DEFINE FIELD IF NOT EXISTS category_id ON blog_post TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS status ON blog_post TYPE string DEFAULT 'draft';
    DEFINE FIELD IF NOT EXISTS created ON blog_post TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS blog_post_slug ON blog_post FIELDS slug UNIQUE;

    DEFINE TABLE IF NOT EXISTS category SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS name ON category TYPE string;
    DEFINE FIELD IF NOT EXISTS slug ON category TYPE string;
    DEFINE FIELD IF NOT EXISTS description ON category TYPE option<string>;

    DEFINE INDEX IF NOT EXISTS category_slug ON category FIELDS slug UNIQUE;

    -- ==========================================================================
    -- PROFILE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS profile SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS email ON profile TYPE string;
    DEFINE FIELD IF NOT EXISTS role ON profile TYPE string;
    DEFINE FIELD IF NOT EXISTS operator_id ON profile TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS password_hash ON profile TYPE string;
    DEFINE FIELD IF NOT EXISTS created ON profile TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS profile_email ON profile FIELDS email UNIQUE;

    -- ==========================================================================
    -- WIZARD DRAFT
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS wizard_draft SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS process_id ON wizard_draft TYPE string;
    DEFINE FIELD IF NOT EXISTS data ON wizard_draft FLEXIBLE TYPE object;
    DEFINE FIELD IF NOT EXISTS updated ON wizard_draft TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS wizard_draft_process ON wizard_draft FIELDS process_id UNIQUE;
`
