// Package actions provides per-object operations for bucket walks.
// Every action exposes an Operate method with the signature of s3.OperateFunc
// and is safe for use with concurrent walks.
package actions
