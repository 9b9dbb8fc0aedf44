package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/resonatehq/console/internal/app/console"
	"github.com/resonatehq/console/internal/app/monitor"
	"github.com/resonatehq/console/internal/app/web"
	"github.com/resonatehq/console/internal/client"
	"github.com/resonatehq/console/internal/store"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Node        Node           `flag:"node"`
	Python      Python         `flag:"python"`
	Client      Client         `flag:"client"`
	Store       store.Config   `flag:"store"`
	Web         web.Config     `flag:"web"`
	Monitor     monitor.Config `flag:"monitor"`
	MetricsAddr string         `flag:"metrics-addr" mapstructure:"metrics-addr" desc:"prometheus metrics server address" default:":9090"`
	LogLevel    string         `flag:"log-level" mapstructure:"log-level" desc:"can be one of: debug, info, warn, error, off" default:"info"`
}

type Node struct {
	Url    string `flag:"url" desc:"node backend base url" default:"http://localhost:5000"`
	Prefix string `flag:"prefix" desc:"node backend resource path prefix" default:""`
}

type Python struct {
	Url    string `flag:"url" desc:"python backend base url" default:"http://localhost:8300"`
	Prefix string `flag:"prefix" desc:"python backend resource path prefix" default:"/api/v1"`
}

type Client struct {
	Timeout     time.Duration `flag:"timeout" desc:"backend request timeout" default:"30s"`
	ConnTimeout time.Duration `flag:"conn-timeout" mapstructure:"conn-timeout" desc:"backend connection timeout" default:"10s"`
}

// legacy environment variables of the browser client, typically found in a
// .env file
var envAliases = map[string]string{
	"node.url":   "NODE_API_BASE_URL",
	"python.url": "PYTHON_API_BASE_URL",
}

// Bind registers a flag for every config field and binds it to its dotted
// key in vip.
func (c *Config) Bind(flags *pflag.FlagSet, vip *viper.Viper) error {
	if err := bind(flags, vip, c, "", ""); err != nil {
		return err
	}

	for key, env := range envAliases { // nosemgrep: range-over-map
		if err := vip.BindEnv(key, strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key)), env); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) Parse(vip *viper.Viper) error {
	hooks := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)

	if err := vip.Unmarshal(c, viper.DecodeHook(hooks)); err != nil {
		return err
	}

	return nil
}

// Console returns the configuration of the store and the backend clients.
func (c *Config) Console() *console.Config {
	return &console.Config{
		Store: &c.Store,
		Node: &client.Config{
			Url:         c.Node.Url,
			Prefix:      c.Node.Prefix,
			Timeout:     c.Client.Timeout,
			ConnTimeout: c.Client.ConnTimeout,
		},
		Python: &client.Config{
			Url:         c.Python.Url,
			Prefix:      c.Python.Prefix,
			Timeout:     c.Client.Timeout,
			ConnTimeout: c.Client.ConnTimeout,
		},
	}
}

// Helper functions

func bind(flags *pflag.FlagSet, vip *viper.Viper, cfg any, fPrefix string, kPrefix string) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		flag := field.Tag.Get("flag")
		desc := field.Tag.Get("desc")
		value := field.Tag.Get("default")

		if flag == "" || flag == "-" {
			continue
		}

		var n, k string
		if fPrefix == "" {
			n = flag
			k = flag
		} else {
			n = fmt.Sprintf("%s-%s", fPrefix, flag)
			k = fmt.Sprintf("%s.%s", kPrefix, flag)
		}

		switch field.Type.Kind() {
		case reflect.String:
			flags.String(n, value, desc)
		case reflect.Bool:
			flags.Bool(n, value == "true", desc)
		case reflect.Int:
			v, _ := strconv.Atoi(value)
			flags.Int(n, v, desc)
		case reflect.Int64:
			if field.Type != reflect.TypeOf(time.Duration(0)) {
				panic(fmt.Sprintf("unsupported int64 type %s", field.Type))
			}
			v, _ := time.ParseDuration(value)
			flags.Duration(n, v, desc)
		case reflect.Slice:
			if field.Type.Elem().Kind() != reflect.String {
				panic(fmt.Sprintf("unsupported slice type %s", field.Type))
			}
			var v []string
			if value != "" {
				v = strings.Split(value, ",")
			}
			flags.StringSlice(n, v, desc)
		case reflect.Struct:
			if err := bind(flags, vip, v.Field(i).Addr().Interface(), n, k); err != nil {
				return err
			}
			continue
		default:
			panic(fmt.Sprintf("unsupported type %s", field.Type.Kind()))
		}

		if err := vip.BindPFlag(k, flags.Lookup(n)); err != nil {
			return err
		}
	}

	return nil
}
