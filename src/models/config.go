package models

// MConfig Structure
type MConfig struct {
	Name     string         `yaml:"name"`
	Host     string         `yaml:"host"`
	Port     int            `yaml:"port"`
	LogLevel string         `yaml:"log_level"`
	GrpcHost string         `yaml:"grpc_host"`
	GrpcPort int            `yaml:"grpc_port"`
	Storage  MStorageConfig `yaml:"storage"`
	Network  MNetworkConfig `yaml:"network"`
	Drift    MDriftConfig   `yaml:"drift"`
	Wallet   MWalletConfig  `yaml:"wallet"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RetentionDays      int    `yaml:"retention_days"`
}

type MNetworkConfig struct {
	RequestTimeout     int    `yaml:"timeout"`
	MaxRetries         int    `yaml:"retries"`
	ConcurrentRequests int    `yaml:"concurrent_requests"`
	UserAgent          string `yaml:"user_agent"`
}

// MDriftConfig configures the Drift gateway connection. Env selects the
// market catalog ("mainnet-beta" or "devnet"), FetchTimeout is the
// per-fetch timeout in seconds and ComputeUnitsPx is the priority-fee
// price attached to submitted transactions.
type MDriftConfig struct {
	Env            string `yaml:"env"`
	GatewayURL     string `yaml:"gateway_url"`
	GatewayWSURL   string `yaml:"gateway_ws_url"`
	FetchTimeout   int    `yaml:"fetch_timeout"`
	ComputeUnitsPx int    `yaml:"compute_units_price"`
}

type MWalletConfig struct {
	Adapters []MWalletAdapterConfig `yaml:"adapters"` // adapters surfaced to the dashboard
}

type MWalletAdapterConfig struct {
	Name        string `yaml:"name"`
	KeypairPath string `yaml:"keypair_path"` // base58 ed25519 secret key file
}
