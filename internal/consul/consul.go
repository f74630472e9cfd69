package consul

import (
	"fmt"
	"strconv"

	consulapi "github.com/hashicorp/consul/api"
)

// NewClient connects to the local consul agent.
func NewClient(address string) (*consulapi.Client, error) {
	cfg := consulapi.DefaultConfig()
	if address != "" {
		cfg.Address = address
	}
	client, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating consul client: %w", err)
	}
	return client, nil
}

// RegisterService announces this service so the gateway can route to it.
func RegisterService(client *consulapi.Client, name, host string, port int) error {
	reg := &consulapi.AgentServiceRegistration{
		ID:      name + "-" + host + "-" + strconv.Itoa(port),
		Name:    name,
		Address: host,
		Port:    port,
		Check: &consulapi.AgentServiceCheck{
			HTTP:     fmt.Sprintf("http://%s:%d/ping", host, port),
			Interval: "10s",
			Timeout:  "2s",
		},
	}
	if err := client.Agent().ServiceRegister(reg); err != nil {
		return fmt.Errorf("registering service %s: %w", name, err)
	}
	return nil
}

// GetServiceAddress resolves a healthy instance of a sibling service.
func GetServiceAddress(client *consulapi.Client, serviceName string) (string, int, error) {
	services, _, err := client.Health().Service(serviceName, "", true, nil)
	if err != nil {
		return "", 0, fmt.Errorf("querying consul for %s: %w", serviceName, err)
	}
	if len(services) == 0 {
		return "", 0, fmt.Errorf("no healthy instances of %s", serviceName)
	}
	svc := services[0].Service
	return svc.Address, svc.Port, nil
}
