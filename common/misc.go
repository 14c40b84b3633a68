package common

import (
	"os"
	"strings"
)

var (
	serviceName     = "orghub"
	serviceInstance string
)

func init() {
	serviceInstance, _ = os.Hostname()
}

func SetServiceName(name string) {
	if strings.TrimSpace(name) != "" {
		serviceName = name
	}
}

func GetServiceName() string {
	return serviceName
}

func GetServiceInstance() string {
	return serviceInstance
}
