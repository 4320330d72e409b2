/*
Package protocol defines the wire vocabulary exchanged between an editor and its backend.

Every frame is one JSON object carrying an Action string and action-specific
fields. Field names are capitalized on the wire; that casing is part of the
compatibility surface with existing backends. There is no request/response
correlation, no length prefix and no version field.
*/
package protocol
