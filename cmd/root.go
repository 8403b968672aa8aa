/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"github.com/mitchellh/go-homedir"
	"github.com/packagewjx/traffic-classifier/internal/artifact"
	"github.com/packagewjx/traffic-classifier/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"os"
)

const configName = ".traffic-classifier"

// Global Flags
const (
	FlagLogLevel       = "log-level"
	FlagLogFormat      = "log-format"
	FlagLogFile        = "log-file"
	FlagModelSource    = "source"
	FlagClassifierFile = "classifier"
	FlagScalerFile     = "scaler"
	FlagEncoderFile    = "label-encoder"
	FlagFeatures       = "features"
	FlagDBDriver       = "db-driver"
	FlagDBDsn          = "db-dsn"
	FlagBundle         = "bundle"
)

// 配置文件中的键
const (
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
	KeyLogFile       = "log.file"
	KeyLogMaxSize    = "log.maxSizeMB"
	KeyLogMaxBackups = "log.maxBackups"
	KeyLogMaxAge     = "log.maxAgeDays"
	KeyModelSource   = "model.source"
	KeyClassifier    = "model.classifier"
	KeyScaler        = "model.scaler"
	KeyLabelEncoder  = "model.labelEncoder"
	KeyFeatures      = "model.features"
	KeyDBDriver      = "model.database.driver"
	KeyDBDsn         = "model.database.dsn"
	KeyBundle        = "model.database.bundle"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "traffic-classifier",
	Short: "网络流量应用分类服务",
	Long: "读取训练好的随机森林模型、特征标准化参数与标签编码，根据流量特征识别所属应用，\n" +
		"并给出置信度与优先级。",
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "",
		"配置文件路径（默认为$HOME/.traffic-classifier.yaml或当前目录下的.traffic-classifier.yaml）")

	flags.String(FlagLogLevel, logging.DefaultLevel, "日志级别，可选值：debug、info、warn、error")
	flags.String(FlagLogFormat, logging.FormatConsole, "日志格式，可选值：console、json")
	flags.String(FlagLogFile, "", "日志文件路径。为空时输出到标准输出，否则按大小滚动写入文件")

	flags.String(FlagModelSource, string(artifact.SourceFile), "模型来源，可选值：file、database")
	flags.String(FlagClassifierFile, artifact.DefaultClassifierPath, "分类器文件路径")
	flags.String(FlagScalerFile, artifact.DefaultScalerPath, "特征标准化参数文件路径")
	flags.String(FlagEncoderFile, artifact.DefaultLabelEncoderPath, "标签编码文件路径")
	flags.StringSlice(FlagFeatures, nil, "特征名称及其顺序。为空时使用scaler文件中记录的特征名称")
	flags.String(FlagDBDriver, artifact.DefaultDatabaseDriver, "模型注册表数据库驱动，可选值：mysql、sqlite")
	flags.String(FlagDBDsn, "", "模型注册表数据库DSN，例如user:password@tcp(host:3306)/models")
	flags.String(FlagBundle, artifact.DefaultBundle, "模型在注册表中的名称")

	for key, flag := range map[string]string{
		KeyLogLevel:     FlagLogLevel,
		KeyLogFormat:    FlagLogFormat,
		KeyLogFile:      FlagLogFile,
		KeyModelSource:  FlagModelSource,
		KeyClassifier:   FlagClassifierFile,
		KeyScaler:       FlagScalerFile,
		KeyLabelEncoder: FlagEncoderFile,
		KeyFeatures:     FlagFeatures,
		KeyDBDriver:     FlagDBDriver,
		KeyDBDsn:        FlagDBDsn,
		KeyBundle:       FlagBundle,
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

// initConfig reads in config file if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory and working directory with name ".traffic-classifier" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(configName)
	}

	// 不读取环境变量，配置只来自命令行参数与配置文件
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Printf("读取配置文件%s失败：%v\n", cfgFile, err)
		os.Exit(1)
	}
}

func loggingConfig() *logging.Config {
	return &logging.Config{
		Level:      viper.GetString(KeyLogLevel),
		Format:     viper.GetString(KeyLogFormat),
		File:       viper.GetString(KeyLogFile),
		MaxSizeMB:  viper.GetInt(KeyLogMaxSize),
		MaxBackups: viper.GetInt(KeyLogMaxBackups),
		MaxAgeDays: viper.GetInt(KeyLogMaxAge),
	}
}

func newLogger() (*zap.Logger, error) {
	return logging.New(loggingConfig())
}

func artifactConfig() artifact.Config {
	return artifact.Config{
		Source:           artifact.SourceType(viper.GetString(KeyModelSource)),
		ClassifierPath:   viper.GetString(KeyClassifier),
		ScalerPath:       viper.GetString(KeyScaler),
		LabelEncoderPath: viper.GetString(KeyLabelEncoder),
		FeatureNames:     viper.GetStringSlice(KeyFeatures),
		Database: artifact.DatabaseConfig{
			Driver: viper.GetString(KeyDBDriver),
			DSN:    viper.GetString(KeyDBDsn),
			Bundle: viper.GetString(KeyBundle),
		},
	}
}
