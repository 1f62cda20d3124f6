// Package models defines the persisted game records and their wire payloads.
package models
