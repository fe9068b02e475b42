// config_registry.go provides a static, file-backed Registry for the
// common case where adapter instances are known ahead of time and don't
// need etcd's dynamic discovery — a local YAML file listing adapter
// launch commands, analogous to a VS Code launch.json's "debuggers"
// section.
package registry

import (
	"os"

	"github.com/roadrunner-server/errors"
	"gopkg.in/yaml.v3"
)

type configFile struct {
	Adapters map[string][]configInstance `yaml:"adapters"`
}

type configInstance struct {
	Addr    string   `yaml:"addr"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Weight  int      `yaml:"weight"`
}

// ConfigRegistry implements Registry by reading a static YAML file once at
// construction. Register and Deregister are no-ops: the instance list is
// fixed for the lifetime of the process. Watch's channel is never written
// to, for the same reason.
type ConfigRegistry struct {
	adapters map[string][]AdapterInstance
}

// LoadConfigRegistry reads and parses the YAML file at path.
func LoadConfigRegistry(path string) (*ConfigRegistry, error) {
	const op = errors.Op("registry.LoadConfigRegistry")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.E(op, err)
	}

	var cf configFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, errors.E(op, err)
	}

	adapters := make(map[string][]AdapterInstance, len(cf.Adapters))
	for adapterID, instances := range cf.Adapters {
		converted := make([]AdapterInstance, 0, len(instances))
		for _, inst := range instances {
			converted = append(converted, AdapterInstance{
				AdapterID: adapterID,
				Addr:      inst.Addr,
				Command:   inst.Command,
				Args:      inst.Args,
				Weight:    inst.Weight,
			})
		}
		adapters[adapterID] = converted
	}

	return &ConfigRegistry{adapters: adapters}, nil
}

func (r *ConfigRegistry) Register(string, AdapterInstance, int64) error { return nil }
func (r *ConfigRegistry) Deregister(string, string) error                { return nil }

// Discover returns the instances configured for adapterID.
func (r *ConfigRegistry) Discover(adapterID string) ([]AdapterInstance, error) {
	return r.adapters[adapterID], nil
}

// Watch returns a channel that never emits: a ConfigRegistry's instance
// list is fixed at load time.
func (r *ConfigRegistry) Watch(string) <-chan []AdapterInstance {
	return make(chan []AdapterInstance)
}
