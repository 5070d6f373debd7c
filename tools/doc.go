// Package tools defines the Tool interface for LLM agents, including parameter schema definitions and call instrumentation. Tools enable agents to interact with OceanBase databases in a structured, extensible way.
package tools
