// Package xconf 提供基于 koanf 的配置加载。
//
// [New] 从文件创建配置实例，按扩展名自动识别 YAML/JSON；
// [NewFromBytes] 从字节数据创建，需显式指定格式。
// 基础读取操作直接使用 [Config.Client] 返回的 koanf 实例，
// 结构化加载用 [Config.Unmarshal]。
//
//	cfg, err := xconf.New("run.yaml")
//	if err != nil { ... }
//	var rc RunConfig
//	if err := cfg.Unmarshal("", &rc); err != nil { ... }
package xconf
