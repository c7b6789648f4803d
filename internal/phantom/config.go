package phantom

const (
	// ChunkRadius is requested once per session after StartGame.
	ChunkRadius int32 = 8

	// DefaultYawCorrection is added to the yaw of every echoed forced
	// movement.
	DefaultYawCorrection float32 = 25

	DefaultAddress = "SPECTER"
	DefaultPort    = 19133
	DefaultSkinID  = "Specter"
)

// Config controls reply synthesis policy.
type Config struct {
	AutoRespawn   bool
	YawCorrection float32
}

func DefaultConfig() Config {
	return Config{
		AutoRespawn:   true,
		YawCorrection: DefaultYawCorrection,
	}
}
