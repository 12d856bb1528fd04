// config.go

package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config 服务器配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig 服务器基本配置
type ServerConfig struct {
	GamePort        int    `mapstructure:"game_port"`
	MatchPort       int    `mapstructure:"match_port"`
	GatewayPort     int    `mapstructure:"gateway_port"`
	Debug           bool   `mapstructure:"debug"`
	LogLevel        string `mapstructure:"log_level"`
	MaxSessionCount int    `mapstructure:"max_session_count"`
}

// GameConfig 对局规则配置
type GameConfig struct {
	TickIntervalMs  int     `mapstructure:"tick_interval_ms"`  // 模拟帧间隔(毫秒)
	WarmupDuration  float64 `mapstructure:"warmup_duration"`   // 热身时长(秒)
	RoundStartDelay float64 `mapstructure:"round_start_delay"` // 回合开始倒计时(秒)
	RoundEndDelay   float64 `mapstructure:"round_end_delay"`   // 回合结算时长(秒)
	RoundDuration   float64 `mapstructure:"round_duration"`    // 单回合时长(秒)
	MaxRounds       int     `mapstructure:"max_rounds"`        // 最大回合数
	PlayersPerTeam  int     `mapstructure:"players_per_team"`  // 每队人数(团队模式)
	TeamCount       int     `mapstructure:"team_count"`        // 队伍数量(团队模式)
	MinPlayers      int     `mapstructure:"min_players"`       // 开局最少玩家数
	ReadyTimeout    float64 `mapstructure:"ready_timeout"`     // 等待准备超时(秒)
	CritChance      float64 `mapstructure:"crit_chance"`       // 暴击概率 0-1
	CritMultiplier  float64 `mapstructure:"crit_multiplier"`   // 暴击倍率
	ArenaWidth      float64 `mapstructure:"arena_width"`       // 竞技场宽度
	ArenaHeight     float64 `mapstructure:"arena_height"`      // 竞技场高度

	// 出生点列表，回合开始时随机打乱后分配
	SpawnPoints []SpawnPoint `mapstructure:"spawn_points"`
}

// SpawnPoint 出生点坐标
type SpawnPoint struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWTSecret     string  `mapstructure:"jwt_secret"`
	TokenTTLHours float64 `mapstructure:"token_ttl_hours"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig Config
)

// LoadConfig 从文件加载配置
func LoadConfig(configPath string) error {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("无法读取配置文件: %w", err)
	}

	if err := viper.Unmarshal(&GlobalConfig); err != nil {
		return fmt.Errorf("无法解析配置文件: %w", err)
	}

	return nil
}

// setDefaults 设置默认值
func setDefaults() {
	viper.SetDefault("game.tick_interval_ms", 50)
	viper.SetDefault("game.warmup_duration", 10.0)
	viper.SetDefault("game.round_start_delay", 3.0)
	viper.SetDefault("game.round_end_delay", 5.0)
	viper.SetDefault("game.round_duration", 120.0)
	viper.SetDefault("game.max_rounds", 3)
	viper.SetDefault("game.players_per_team", 3)
	viper.SetDefault("game.team_count", 2)
	viper.SetDefault("game.min_players", 2)
	viper.SetDefault("game.ready_timeout", 60.0)
	viper.SetDefault("game.crit_chance", 0.1)
	viper.SetDefault("game.crit_multiplier", 1.5)
	viper.SetDefault("game.arena_width", 1600.0)
	viper.SetDefault("game.arena_height", 900.0)
	viper.SetDefault("auth.token_ttl_hours", 24.0)
}

// GetDSN 获取PostgreSQL连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetRedisAddr 获取Redis连接地址
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
