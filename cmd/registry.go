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
	"github.com/packagewjx/traffic-classifier/internal/artifact"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// registryCmd represents the registry command
var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "管理数据库中的模型",
	Long: "模型注册表将分类器、scaler与label encoder保存在数据库中，serve使用--source database时从中读取。\n" +
		"数据库通过--db-driver与--db-dsn指定。",
}

var registryPushCmd = &cobra.Command{
	Use:   "push",
	Short: "校验模型文件并保存到注册表",
	Long:  "读取--classifier、--scaler与--label-encoder指定的文件，校验通过后以--bundle为名保存，同名模型将被覆盖。",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := openRegistry()
		if err != nil {
			return err
		}
		defer registry.Close()

		config := artifactConfig()
		bundle := viper.GetString(KeyBundle)
		if err = artifact.Push(registry, bundle, &config); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "模型%s已保存\n", bundle)
		return nil
	},
}

var registryListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出注册表中的模型",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := openRegistry()
		if err != nil {
			return err
		}
		defer registry.Close()

		bundles, err := registry.QueryBundles()
		if err != nil {
			return err
		}
		for _, bundle := range bundles {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), bundle)
		}
		return nil
	},
}

func openRegistry() (artifact.Registry, error) {
	dsn := viper.GetString(KeyDBDsn)
	if dsn == "" {
		return nil, fmt.Errorf("没有指定数据库DSN")
	}
	return artifact.OpenRegistry(viper.GetString(KeyDBDriver), dsn)
}

func init() {
	rootCmd.AddCommand(registryCmd)
	registryCmd.AddCommand(registryPushCmd, registryListCmd)
}
