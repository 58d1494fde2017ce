package config

type AppConfig struct {
	Server ServerConfig
	Log    LogConfig
	Game   GameConfig
	ZK     ZKConfig
	Hub    HubConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	gameCfg, err := LoadGame()
	if err != nil {
		return AppConfig{}, err
	}
	zkCfg, err := LoadZK()
	if err != nil {
		return AppConfig{}, err
	}
	hubCfg, err := LoadHub()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server: serverCfg,
		Log:    logCfg,
		Game:   gameCfg,
		ZK:     zkCfg,
		Hub:    hubCfg,
	}, nil
}
