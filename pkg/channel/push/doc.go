// Package push delivers notifications to registered devices.
//
// Two backends are supported, selected per channel config by its
// provider field:
//
//   - fcm: Firebase Cloud Messaging. Android and iOS tokens go out in a
//     single multicast; web tokens ride the same multicast unless
//     web_via_fcm is false. Settings: credentials_json, project_id,
//     web_origin.
//   - webpush: standards-based Web Push with VAPID keys. Tokens are
//     browser subscription JSON documents; native tokens are reported
//     as unsupported. Settings: vapid_public_key, vapid_private_key,
//     subscriber, ttl.
//
// A delivery fans out to every token in the recipient's settings. The
// adapter aggregates per-token results into one outcome: reaching any
// device counts as success, provider message IDs are collected, and
// failures are reported per token.
package push
