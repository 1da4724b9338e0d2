package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/anoixa/comic-tracker/internal/comics"
	"github.com/anoixa/comic-tracker/utils"
)

// seedFile comics import 和 ingest --manifest 共用的种子文件
//
// TOML:
//
//	[[comics]]
//	name = "xkcd"
//	url = "https://xkcd.com/"
//	start_date = 2005-09-30
//
//	[[releases]]
//	comic = "xkcd"
//	date = 2026-10-14
//	file = "strips/xkcd-3001.png"
type seedFile struct {
	Comics   []comics.Input `mapstructure:"comics"`
	Releases []releaseSeed  `mapstructure:"releases"`

	dir string
}

type releaseSeed struct {
	Comic string    `mapstructure:"comic"`
	Date  time.Time `mapstructure:"date"`
	File  string    `mapstructure:"file"`
	Title string    `mapstructure:"title"`
	Text  string    `mapstructure:"text"`
}

// path 相对路径以种子文件所在目录为基准
func (s *seedFile) path(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(s.dir, file)
}

// loadSeedFile 按扩展名解析 TOML 或 YAML，未知字段视为错误
func loadSeedFile(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	raw := make(map[string]interface{})
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unsupported seed file %q, expected .toml, .yaml or .yml", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	seed := &seedFile{dir: filepath.Dir(path)}
	if err := decodeSeed(raw, seed); err != nil {
		return nil, fmt.Errorf("invalid seed file %s: %w", path, err)
	}
	return seed, nil
}

func decodeSeed(raw map[string]interface{}, out *seedFile) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			localDateHook,
			mapstructure.StringToTimeHookFunc(utils.DateLayout),
		),
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

// localDateHook TOML 的本地日期转为 UTC 零点
func localDateHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	switch d := data.(type) {
	case toml.LocalDate:
		return d.AsTime(time.UTC), nil
	case toml.LocalDateTime:
		return utils.CivilDate(d.AsTime(time.UTC)), nil
	case time.Time:
		if to == reflect.TypeOf(time.Time{}) {
			return utils.CivilDate(d), nil
		}
	}
	return data, nil
}
