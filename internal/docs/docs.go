// Package docs serves the embedded OpenAPI document.
package docs

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
)

const Prefix = "/swagger"

//go:embed openapi.yaml
var openAPIYAML []byte

// Document returns the OpenAPI document with servers pointing at apiPrefix.
func Document(apiPrefix string) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(openAPIYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	server := "/" + strings.Trim(apiPrefix, "/")
	doc["servers"] = []interface{}{map[string]interface{}{"url": server}}
	return doc, nil
}

// Register mounts /swagger/openapi.yaml and /swagger/openapi.json.
func Register(r gin.IRouter, apiPrefix string) error {
	doc, err := Document(apiPrefix)
	if err != nil {
		return err
	}
	asYAML, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode openapi yaml: %w", err)
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode openapi json: %w", err)
	}

	g := r.Group(Prefix)
	g.GET("/openapi.yaml", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml", asYAML)
	})
	g.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", asJSON)
	})
	return nil
}
