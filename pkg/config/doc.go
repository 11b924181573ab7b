// Package config holds the configuration of the pool simulator and of the
// pools it drives.
//
// Configuration is read from YAML. Any ${VAR_NAME} in the file is replaced
// by the value of the environment variable before parsing, so secrets and
// per-machine paths stay out of the file:
//
//	logging:
//	  level: ${POOLSIM_LOG_LEVEL}
//	pools:
//	  props:
//	    prewarm: 32
//	    max_idle: 64
//
// LoadFile starts from Default, overlays the file and validates the result:
//
//	cfg, err := config.LoadFile("poolsim.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Pools
//
// Each entry under pools configures one named pool. Prewarm objects are
// allocated when the pool is built; at the end of every simulated frame the
// pool is pruned down to MaxIdle idle objects. A MaxIdle of zero disables
// pruning.
package config
