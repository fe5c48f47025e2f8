package networks

import (
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Insert more Network implementation here to support
// more chains
var supportedNetworks = []Network{
	BSCMainnet,
	BSCTestnet,
	EthereumMainnet,
}

var globalSupportedNetworks = newSupportedNetworks()
var ErrNetworkNotFound = fmt.Errorf("network not found")

// CustomNetworksDir holds json encoded GenericEtherscanNetworkConfig files that
// are loaded on top of the built-in networks.
var CustomNetworksDir = defaultCustomNetworksDir()

type networks struct {
	networks     map[string]Network
	networksByID map[uint64]Network
}

func (n *networks) getSupportedNetworkNames() []string {
	res := []string{}
	for name := range n.networks {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

func (n *networks) getNetworkByID(id uint64) (Network, error) {
	res, found := n.networksByID[id]
	if !found {
		return nil, fmt.Errorf("network id %d is not supported", id)
	}
	return res, nil
}

func (n *networks) getNetwork(name string) (Network, error) {
	res, found := n.networks[name]
	if !found {
		if suggestions := n.suggest(name); len(suggestions) > 0 {
			return nil, fmt.Errorf(
				"network name '%s': %w, did you mean %s?",
				name, ErrNetworkNotFound, strings.Join(suggestions, " or "),
			)
		}
		return nil, fmt.Errorf("network name '%s': %w", name, ErrNetworkNotFound)
	}
	return res, nil
}

// NameSource is a fuzzy.Source over network names.
type NameSource []string

func (ns NameSource) Len() int {
	return len(ns)
}

func (ns NameSource) String(i int) string {
	return ns[i]
}

const maxSuggestions = 3

func (n *networks) suggest(name string) []string {
	if name == "" {
		return nil
	}
	source := NameSource(n.getSupportedNetworkNames())
	matches := fuzzy.FindFrom(name, source)
	res := []string{}
	for i := 0; i < len(matches) && i < maxSuggestions; i++ {
		res = append(res, source[matches[i].Index])
	}
	return res
}

func (n *networks) add(network Network) error {
	if _, found := n.networks[network.GetName()]; found {
		return fmt.Errorf("network with name or alternative name of '%s' already exists", network.GetName())
	}
	for _, an := range network.GetAlternativeNames() {
		if _, found := n.networks[an]; found {
			return fmt.Errorf("network with name or alternative name of '%s' already exists", an)
		}
	}
	n.set(network)
	return nil
}

func (n *networks) set(network Network) {
	n.networks[network.GetName()] = network
	n.networksByID[network.GetChainID()] = network
	for _, an := range network.GetAlternativeNames() {
		n.networks[an] = network
	}
}

func (n *networks) getSupportedNetworks() []Network {
	seen := map[string]bool{}
	res := []Network{}
	for _, network := range n.networks {
		if seen[network.GetName()] {
			continue
		}
		seen[network.GetName()] = true
		res = append(res, network)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].GetName() < res[j].GetName()
	})
	return res
}

func newSupportedNetworks() *networks {
	result := networks{
		map[string]Network{},
		map[uint64]Network{},
	}
	for _, n := range supportedNetworks {
		if err := result.add(n); err != nil {
			panic(err)
		}
	}

	customNetworks, err := loadCustomNetworks(CustomNetworksDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to load custom networks: %s. Ignore and continue with built-in networks.\n", err)
		return &result
	}

	for _, n := range customNetworks {
		if err := result.add(n); err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: %s. Ignore custom network.\n", err)
		}
	}
	return &result
}

func defaultCustomNetworksDir() string {
	usr, err := user.Current()
	if err != nil {
		return ""
	}
	return filepath.Join(usr.HomeDir, ".blockseek", "networks")
}

func loadCustomNetworks(dir string) ([]Network, error) {
	if dir == "" {
		return nil, nil
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob json files in %s: %w", dir, err)
	}

	networks := []Network{}

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file, err)
		}

		network, err := NewNetworkFromJSON(content)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse network from file %s: %s. Ignore and continue with other custom networks.\n", file, err)
			continue
		}

		networks = append(networks, network)
	}

	return networks, nil
}

func NewNetworkFromJSON(content []byte) (Network, error) {
	networkConfig := GenericEtherscanNetworkConfig{}
	err := json.Unmarshal(content, &networkConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal network config: %w", err)
	}
	if networkConfig.Name == "" {
		return nil, fmt.Errorf("network config must have a name")
	}

	return NewGenericEtherscanNetwork(networkConfig), nil
}

func GetNetwork(name string) (Network, error) {
	return globalSupportedNetworks.getNetwork(name)
}

func GetNetworkByID(id uint64) (Network, error) {
	return globalSupportedNetworks.getNetworkByID(id)
}

func GetSupportedNetworkNames() []string {
	return globalSupportedNetworks.getSupportedNetworkNames()
}

// GetSupportedNetworks returns every network once, sorted by name.
func GetSupportedNetworks() []Network {
	return globalSupportedNetworks.getSupportedNetworks()
}

// AddNetwork parses a json network config, saves it to dir and registers
// it. An existing network with a clashing name is only replaced when force
// is set.
func AddNetwork(dir string, content []byte, force bool) (Network, error) {
	network, err := NewNetworkFromJSON(content)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return nil, fmt.Errorf("custom networks dir is not set")
	}
	if !force {
		for _, name := range append([]string{network.GetName()}, network.GetAlternativeNames()...) {
			if _, err := globalSupportedNetworks.getNetwork(name); err == nil {
				return nil, fmt.Errorf("network with name %s already exists", name)
			}
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	file := filepath.Join(dir, network.GetName()+".json")
	if err := os.WriteFile(file, content, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", file, err)
	}
	globalSupportedNetworks.set(network)
	return network, nil
}
