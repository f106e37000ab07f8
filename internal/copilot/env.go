// Package copilot reads the environment variables AWS Copilot sets for a
// service.
package copilot

import (
	"fmt"
	"os"
)

// App returns the Copilot application name.
func App() string {
	return os.Getenv("COPILOT_APPLICATION_NAME")
}

// Environment returns the Copilot environment name.
func Environment() string {
	return os.Getenv("COPILOT_ENVIRONMENT_NAME")
}

// QueueURI returns the URL of a worker service's subscription queue.
func QueueURI() string {
	return os.Getenv("COPILOT_QUEUE_URI")
}

// ServiceName returns "<app>-<env>-<svc>" when running under Copilot and
// defaultName otherwise.
func ServiceName(defaultName string) string {
	app, ok := os.LookupEnv("COPILOT_APPLICATION_NAME")
	if !ok {
		return defaultName
	}

	env, ok := os.LookupEnv("COPILOT_ENVIRONMENT_NAME")
	if !ok {
		return defaultName
	}

	svc, ok := os.LookupEnv("COPILOT_SERVICE_NAME")
	if !ok {
		return defaultName
	}

	return fmt.Sprintf("%s-%s-%s", app, env, svc)
}

// ServiceURL returns the service discovery URL of svc in the current
// Copilot environment.
func ServiceURL(svc string, port int, path string) string {
	return fmt.Sprintf("http://%s.%s.%s.local:%d%s", svc, Environment(), App(), port, path)
}
